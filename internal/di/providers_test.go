package di

import (
	"testing"

	pkgcache "PortfolioAssist/pkg/cache"
	"PortfolioAssist/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvidersDisabledByDefault(t *testing.T) {
	cfg := config.Default()

	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)

	ch, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)

	rc, err := ProvideRedis(cfg)
	require.NoError(t, err)
	assert.Nil(t, rc)

	assert.Empty(t, ProvideSyncSinks(cfg, producer, ch, rc))
	assert.IsType(t, &pkgcache.MemoryCache{}, ProvideFrameStore(cfg, rc))
}

func TestProvideRateLimiter(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, ProvideRateLimiter(cfg))

	cfg.RateLimit.PerSecond = 0
	assert.Nil(t, ProvideRateLimiter(cfg))
}

func TestInitializeAppDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	assert.NotNil(t, app)
}
