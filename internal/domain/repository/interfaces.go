package repository

import (
	"context"
	"time"

	"PortfolioAssist/internal/domain/models"
)

// PortfolioStore holds the ordered investment list for the process lifetime.
type PortfolioStore interface {
	Add(entry models.Investment) models.Snapshot
	Clear() models.Snapshot
	Snapshot() models.Snapshot
	Version() uint64
	// Subscribe returns a channel signalled after every change. Signals coalesce.
	Subscribe() (<-chan struct{}, func())
}

// SyncSink receives background sync aggregates.
type SyncSink interface {
	Name() string
	Write(ctx context.Context, r *models.SyncReport) error
	Close() error
}

// FrameCache stores encoded final chart frames.
type FrameCache interface {
	GetFrame(ctx context.Context, key string) ([]byte, bool, error)
	SetFrame(ctx context.Context, key string, frame []byte, ttl time.Duration) error
}

type Metrics interface {
	RecordPortfolio(total float64, count int, average float64)
	RecordInvestmentAdded()
	RecordValidationRejected(field string)
	RecordFrame(format string)
	RecordAnimationRestart(reduceMotion bool)
	RecordSyncRun()
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordQueueDepth(queue string, depth int)
	ViewOpened()
	ViewClosed()
}
