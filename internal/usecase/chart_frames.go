package usecase

import (
	"context"
	"time"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	"PortfolioAssist/internal/service/chart"
	icache "PortfolioAssist/internal/service/cache"
	applogger "PortfolioAssist/pkg/logger"
	"PortfolioAssist/pkg/util"
)

// Supported frame sizes for on-demand rendering.
const (
	MinFrameSize = 100
	MaxFrameSize = 1200
)

// ChartFrames renders chart frames on demand and caches completed ones.
type ChartFrames struct {
	renderer *chart.Renderer
	cache    domrepo.FrameCache
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	ttl      time.Duration
}

func NewChartFrames(renderer *chart.Renderer, cache domrepo.FrameCache, metrics domrepo.Metrics, logger *applogger.Logger, ttl time.Duration) *ChartFrames {
	return &ChartFrames{renderer: renderer, cache: cache, metrics: metrics, logger: logger, ttl: ttl}
}

// FrameSize resolves a requested size against the defaults and the supported range.
func (f *ChartFrames) FrameSize(width, height int) (int, int) {
	dw, dh := f.renderer.Size()
	if width <= 0 {
		width = dw
	}
	if height <= 0 {
		height = dh
	}
	return util.Clamp(width, MinFrameSize, MaxFrameSize), util.Clamp(height, MinFrameSize, MaxFrameSize)
}

// Frame renders snap at progress. Final frames (progress 1) are served from
// and stored in the cache; cache failures only cost a re-render.
func (f *ChartFrames) Frame(ctx context.Context, snap models.Snapshot, format chart.Format, progress float64, width, height int) ([]byte, error) {
	progress = util.Clamp(progress, 0, 1)
	width, height = f.FrameSize(width, height)

	cacheable := f.cache != nil && progress == 1
	key := icache.FrameKey(snap.Entries, string(format), width, height)
	if cacheable {
		b, ok, err := f.cache.GetFrame(ctx, key)
		if err != nil {
			f.metrics.RecordError("frame_cache_get")
			f.logger.Warn("frame cache read failed", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			return b, nil
		}
	}

	start := time.Now()
	b, err := f.renderer.Render(format, snap.Entries, progress, width, height)
	if err != nil {
		f.metrics.RecordError("render_" + string(format))
		return nil, err
	}
	f.metrics.RecordFrame(string(format))
	f.metrics.RecordLatency("render_"+string(format), time.Since(start).Seconds())

	if cacheable {
		if err := f.cache.SetFrame(ctx, key, b, f.ttl); err != nil {
			f.metrics.RecordError("frame_cache_set")
			f.logger.Warn("frame cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return b, nil
}
