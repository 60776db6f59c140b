package repository

import (
	"context"
	"database/sql"
	"fmt"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
)

// DefaultSyncTable receives one row per sync run.
const DefaultSyncTable = "portfolio_sync"

// SyncSchema returns the DDL for the sync table.
func SyncSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts      DateTime64(3),
            view_id String,
            total   Float64,
            count   UInt32,
            average Float64
        ) ENGINE = MergeTree
        ORDER BY (view_id, ts)
        TTL toDateTime(ts) + INTERVAL 30 DAY`, table)}
}

// ClickHouseSyncSink appends sync reports to a ClickHouse table.
type ClickHouseSyncSink struct {
	db    *sql.DB
	table string
}

func NewClickHouseSyncSink(db *sql.DB, table string) *ClickHouseSyncSink {
	if table == "" {
		table = DefaultSyncTable
	}
	return &ClickHouseSyncSink{db: db, table: table}
}

var _ domrepo.SyncSink = (*ClickHouseSyncSink)(nil)

func (s *ClickHouseSyncSink) Name() string { return "clickhouse" }

func (s *ClickHouseSyncSink) Write(ctx context.Context, r *models.SyncReport) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, view_id, total, count, average) VALUES (?, ?, ?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q, r.At, r.ViewID, r.Total, uint32(r.Count), r.Average); err != nil {
		return fmt.Errorf("insert sync report: %w", err)
	}
	return nil
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *ClickHouseSyncSink) Close() error { return nil }
