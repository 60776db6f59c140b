//go:build wireinject
// +build wireinject

package di

import (
	"PortfolioAssist/pkg/config"
	"PortfolioAssist/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideClickHouseClient,
		ProvideRedis,
		ProvideFrameStore,

		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Repositories
		ProvidePortfolioStore,
		ProvideFrameCache,
		ProvideSyncSinks,
		ProvideSyncPipeline,

		// Services and use cases
		ProvideRenderer,
		ProvideAdvisor,
		ProvideRateLimiter,
		ProvidePortfolioService,
		ProvideChartFrames,
		ProvideViewManager,

		// Transport
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
