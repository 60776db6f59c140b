package di

import (
	"context"
	"fmt"
	"time"

	"PortfolioAssist/internal/domain/repository"
	"PortfolioAssist/internal/handler/api"
	mid "PortfolioAssist/internal/middleware"
	internalrepo "PortfolioAssist/internal/repository"
	icache "PortfolioAssist/internal/service/cache"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/internal/service/network"
	"PortfolioAssist/internal/service/ratelimit"
	"PortfolioAssist/internal/usecase"
	"PortfolioAssist/internal/view"
	pkgcache "PortfolioAssist/pkg/cache"
	pkgch "PortfolioAssist/pkg/clickhouse"
	"PortfolioAssist/pkg/config"
	xhttp "PortfolioAssist/pkg/http"
	pkgkafka "PortfolioAssist/pkg/kafka"
	applogger "PortfolioAssist/pkg/logger"
	"PortfolioAssist/pkg/metrics"
	"PortfolioAssist/pkg/server"
)

var _ applogger.Publisher = (*pkgkafka.Producer)(nil)

// ProvideKafkaProducer creates the shared Kafka producer, or nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.Producer.AutoCreate),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger. Error lines are also
// aggregated to Kafka when the collector is enabled and a producer exists.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AttachCollector(applogger.NewErrorCollector(applogger.CollectorConfig{
			Interval:   cfg.Log.Collector.Interval,
			MaxEntries: cfg.Log.Collector.MaxEntries,
			Topic:      cfg.Log.Collector.Topic,
			Publisher:  producer,
		}))
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects to ClickHouse and creates the sync table,
// or returns nil when the ClickHouse sink is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Sync.ClickHouse {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.SyncSchema(cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSyncSinks builds the enabled sync sinks.
func ProvideSyncSinks(cfg *config.Config, producer *pkgkafka.Producer, ch *pkgch.Client, rc *pkgcache.RedisCache) []repository.SyncSink {
	var sinks []repository.SyncSink
	if cfg.Sync.Kafka && producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaSyncSink(producer, cfg.Kafka.Topic))
	}
	if ch != nil {
		sinks = append(sinks, internalrepo.NewClickHouseSyncSink(ch.DB(), cfg.ClickHouse.Table))
	}
	if cfg.Sync.Redis && rc != nil {
		key := cfg.Cache.Redis.Prefix + ":" + cfg.Sync.RedisKey
		sinks = append(sinks, internalrepo.NewRedisSyncSink(rc.Client(), key, cfg.Sync.RedisMax))
	}
	return sinks
}

// ProvideSyncPipeline creates the fan-out from view sync loggers to the sinks.
func ProvideSyncPipeline(cfg *config.Config, sinks []repository.SyncSink, m repository.Metrics, l *applogger.Logger) *mid.SyncPipeline {
	return mid.NewSyncPipeline(sinks, m,
		mid.WithBufferSize(cfg.Sync.BufferSize),
		mid.WithRetry(cfg.Sync.Retries, cfg.Sync.BackoffMin, cfg.Sync.BackoffMax),
		mid.WithBreaker(cfg.Sync.TripAfter, cfg.Sync.OpenFor),
		mid.WithPipelineLogger(l.Component("sync")),
	)
}

// ProvideRedis connects to Redis when the frame cache or the sync sink needs it.
func ProvideRedis(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.RedisEnabled() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := pkgcache.NewRedisCache(ctx,
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		pkgcache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideFrameStore creates the frame cache backend: in-process, or in-process
// in front of Redis when enabled. The layered store owns the Redis client.
func ProvideFrameStore(cfg *config.Config, rc *pkgcache.RedisCache) pkgcache.Service {
	memOpts := []pkgcache.MemoryOption{pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)}
	if !cfg.Cache.Redis.Enabled || rc == nil {
		return pkgcache.NewMemoryCache(memOpts...)
	}
	return pkgcache.NewLayeredCache(rc, memOpts...)
}

// ProvideFrameCache stores final chart frames.
func ProvideFrameCache(store pkgcache.Service) repository.FrameCache {
	return icache.NewFrameCache(store)
}

// ProvidePortfolioStore creates the process-wide portfolio.
func ProvidePortfolioStore() repository.PortfolioStore {
	return internalrepo.NewMemoryPortfolioStore()
}

// ProvidePortfolioService creates the portfolio use case.
func ProvidePortfolioService(store repository.PortfolioStore, m repository.Metrics) *usecase.PortfolioService {
	return usecase.NewPortfolioService(store, m)
}

// ProvideRenderer creates the chart renderer at the configured canvas size.
func ProvideRenderer(cfg *config.Config) *chart.Renderer {
	return chart.NewRenderer(chart.WithSize(cfg.Chart.Width, cfg.Chart.Height))
}

// ProvideChartFrames creates the on-demand frame use case.
func ProvideChartFrames(cfg *config.Config, r *chart.Renderer, cache repository.FrameCache, m repository.Metrics, l *applogger.Logger) *usecase.ChartFrames {
	return usecase.NewChartFrames(r, cache, m, l.Component("chart"), cfg.Chart.FrameCacheTTL)
}

// ProvideAdvisor creates the request-scoped network advisor.
func ProvideAdvisor(cfg *config.Config) *network.Advisor {
	return network.NewAdvisor(network.WithSlowTypes(cfg.Network.SlowTypes...))
}

// ProvideRateLimiter limits investment submissions per client.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.RateLimit.PerSecond <= 0 {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
}

// ProvideViewManager creates the view session manager.
func ProvideViewManager(
	cfg *config.Config,
	store repository.PortfolioStore,
	r *chart.Renderer,
	m repository.Metrics,
	l *applogger.Logger,
	pipeline *mid.SyncPipeline,
) *view.Manager {
	opts := []view.Option{
		view.WithAnimation(cfg.Chart.AnimationDuration, cfg.Chart.FrameInterval),
		view.WithSyncInterval(cfg.Sync.Interval),
		view.WithSlowTypes(cfg.Network.SlowTypes),
	}
	if pipeline.Enabled() {
		opts = append(opts, view.WithPublisher(pipeline))
	}
	return view.NewManager(store, r, m, l, opts...)
}

// ProvideHandlers builds every HTTP route group.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	portfolio *usecase.PortfolioService,
	frames *usecase.ChartFrames,
	advisor *network.Advisor,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	views *view.Manager,
) ([]xhttp.Handler, error) {
	page, err := api.NewPageHandler(l, portfolio, frames, advisor, cfg.Sync.Interval)
	if err != nil {
		return nil, err
	}
	return []xhttp.Handler{
		page,
		api.NewPortfolioEchoHandler(l, portfolio, limiter, m),
		api.NewChartEchoHandler(l, portfolio, frames),
		api.NewNetworkEchoHandler(advisor),
		api.NewViewSocketHandler(l, views),
	}, nil
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, handlers []xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	views *view.Manager,
	pipeline *mid.SyncPipeline,
	limiter *ratelimit.Limiter,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	rc *pkgcache.RedisCache,
	frameStore pkgcache.Service,
) *server.App {
	opts := []server.Option{
		server.WithHTTPServer(httpServer),
		server.WithViews(views),
		server.WithSyncPipeline(pipeline),
		server.WithRateLimiter(limiter),
	}
	// typed nils must not reach the closer list
	if producer != nil {
		opts = append(opts, server.WithCloser("kafka producer", producer))
	}
	if ch != nil {
		opts = append(opts, server.WithCloser("clickhouse", ch))
	}
	opts = append(opts, server.WithCloser("frame cache", frameStore))
	// a layered frame store already closes Redis
	if rc != nil && !cfg.Cache.Redis.Enabled {
		opts = append(opts, server.WithCloser("redis", rc))
	}
	return server.New(cfg, l, opts...)
}
