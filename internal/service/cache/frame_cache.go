package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	pkgcache "PortfolioAssist/pkg/cache"
)

// DefaultFrameTTL keeps final frames long enough to survive a burst of page loads.
const DefaultFrameTTL = 10 * time.Minute

// FrameCache stores rendered chart frames keyed by portfolio contents, format and size.
type FrameCache struct {
	store pkgcache.Service
}

func NewFrameCache(store pkgcache.Service) *FrameCache {
	return &FrameCache{store: store}
}

var _ domrepo.FrameCache = (*FrameCache)(nil)

// FrameKey identifies one final frame. The key depends only on the entries,
// so equal portfolios share frames across restarts and replicas.
func FrameKey(entries []models.Investment, format string, width, height int) string {
	return pkgcache.GenerateKeyWithParams("frame", Digest(entries), format, fmt.Sprintf("%dx%d", width, height))
}

// Digest hashes the ordered entries.
func Digest(entries []models.Investment) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Name))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(e.Amount, 'g', -1, 64)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

// GetFrame returns the cached frame. A miss is not an error.
func (c *FrameCache) GetFrame(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (c *FrameCache) SetFrame(ctx context.Context, key string, frame []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultFrameTTL
	}
	return c.store.Set(ctx, key, frame, ttl)
}

// Close releases the underlying store.
func (c *FrameCache) Close() error {
	return c.store.Close()
}
