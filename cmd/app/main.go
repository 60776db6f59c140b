package main

import (
	"flag"
	"log"
	"os"

	"PortfolioAssist/internal/di"
	"PortfolioAssist/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s port=%d sync_interval=%s", cfg.Environment, cfg.Server.Port, cfg.Sync.Interval)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.KafkaEnabled() {
		log.Printf("kafka: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	if cfg.Sync.ClickHouse {
		log.Printf("clickhouse: connected and schema ready - table: %s.%s", cfg.ClickHouse.Database, cfg.ClickHouse.Table)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
