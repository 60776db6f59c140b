package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"json"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled    bool          `yaml:"enabled"`
			Topic      string        `yaml:"topic" default:"portfolio.logs"`
			Interval   time.Duration `yaml:"interval" default:"30s"`
			MaxEntries int           `yaml:"max_entries" default:"100"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Chart struct {
		Width             int           `yaml:"width" default:"300"`
		Height            int           `yaml:"height" default:"300"`
		AnimationDuration time.Duration `yaml:"animation_duration" default:"1s"`
		FrameInterval     time.Duration `yaml:"frame_interval" default:"16ms"`
		FrameCacheTTL     time.Duration `yaml:"frame_cache_ttl" default:"10m"`
	} `yaml:"chart"`
	Network struct {
		SlowTypes []string `yaml:"slow_types" default:"[\"slow-2g\",\"2g\"]"`
	} `yaml:"network"`
	Sync struct {
		Interval   time.Duration `yaml:"interval" default:"15s"`
		Kafka      bool          `yaml:"kafka"`
		ClickHouse bool          `yaml:"clickhouse"`
		Redis      bool          `yaml:"redis"`
		RedisKey   string        `yaml:"redis_key" default:"sync"`
		RedisMax   int64         `yaml:"redis_max_len" default:"1000"`
		BufferSize int           `yaml:"buffer_size" default:"256"`
		Retries    int           `yaml:"retries" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		TripAfter  uint32        `yaml:"trip_after" default:"5"`
		OpenFor    time.Duration `yaml:"open_for" default:"30s"`
	} `yaml:"sync"`
	RateLimit struct {
		PerSecond float64 `yaml:"per_second" default:"5"`
		Burst     int     `yaml:"burst" default:"10"`
	} `yaml:"rate_limit"`
	Cache struct {
		MemoryMaxSize int `yaml:"memory_max_size" default:"512"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"portfolio"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"portfolio.sync"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"500ms"`
			BatchSize    int           `yaml:"batch_size" default:"50"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"5s"`
			Async        bool          `yaml:"async"`
			AutoCreate   bool          `yaml:"auto_create_topics"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"default"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		Table       string        `yaml:"table" default:"portfolio_sync"`
		UseHTTP     bool          `yaml:"use_http"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	c, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// An empty path skips the file.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = readFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// RedisEnabled reports whether anything needs a Redis connection.
func (c *Config) RedisEnabled() bool {
	return c.Cache.Redis.Enabled || c.Sync.Redis
}

// KafkaEnabled reports whether anything needs a producer.
func (c *Config) KafkaEnabled() bool {
	return c.Sync.Kafka || c.Log.Collector.Enabled
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Chart.Width < 100 || c.Chart.Width > 1200 || c.Chart.Height < 100 || c.Chart.Height > 1200 {
		return fmt.Errorf("chart size must be within 100..1200, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.AnimationDuration <= 0 || c.Chart.FrameInterval <= 0 {
		return fmt.Errorf("chart.animation_duration and chart.frame_interval must be positive")
	}
	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync.interval must be at least 1s, got %s", c.Sync.Interval)
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit.per_second and rate_limit.burst must be positive")
	}
	if c.KafkaEnabled() && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka sync or the log collector is enabled")
	}
	if c.Sync.ClickHouse && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse sync is enabled")
	}
	return nil
}

func readFile(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
