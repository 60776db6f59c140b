package cache

import (
	"context"
	"strings"
	"testing"

	"PortfolioAssist/internal/domain/models"
	pkgcache "PortfolioAssist/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameCache(t *testing.T) {
	mem := pkgcache.NewMemoryCache(pkgcache.WithMemoryCleanup(0))
	c := NewFrameCache(mem)
	defer c.Close()
	ctx := context.Background()

	entries := []models.Investment{{Name: "Stocks", Amount: 100}}
	key := FrameKey(entries, "svg", 300, 300)
	assert.True(t, strings.HasPrefix(key, "frame:"))
	assert.True(t, strings.HasSuffix(key, ":svg:300x300"))

	_, ok, err := c.GetFrame(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetFrame(ctx, key, []byte("<svg/>"), 0))
	b, ok, err := c.GetFrame(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<svg/>", string(b))

	changed := append(entries, models.Investment{Name: "Bonds", Amount: 1})
	_, ok, _ = c.GetFrame(ctx, FrameKey(changed, "svg", 300, 300))
	assert.False(t, ok, "different contents miss")
}

func TestDigest(t *testing.T) {
	a := []models.Investment{{Name: "A", Amount: 1}, {Name: "B", Amount: 2}}
	b := []models.Investment{{Name: "B", Amount: 2}, {Name: "A", Amount: 1}}

	assert.Equal(t, Digest(a), Digest([]models.Investment{{Name: "A", Amount: 1}, {Name: "B", Amount: 2}}))
	assert.NotEqual(t, Digest(a), Digest(b), "order matters")
	assert.NotEqual(t, Digest([]models.Investment{{Name: "A1", Amount: 1}}), Digest([]models.Investment{{Name: "A", Amount: 11}}))
	assert.Len(t, Digest(nil), 24)
}
