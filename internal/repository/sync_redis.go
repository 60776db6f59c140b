package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// ListPusher is the part of redis.Cmdable the sink needs.
type ListPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisSyncSink keeps the most recent sync reports in a capped Redis list,
// newest first.
type RedisSyncSink struct {
	client ListPusher
	key    string
	maxLen int64
}

// NewRedisSyncSink creates a Redis list sink. The client is shared with the
// frame cache and closed by its owner. maxLen <= 0 leaves the list uncapped.
func NewRedisSyncSink(client ListPusher, key string, maxLen int64) *RedisSyncSink {
	if key == "" {
		key = "portfolio:sync"
	}
	return &RedisSyncSink{client: client, key: key, maxLen: maxLen}
}

var _ domrepo.SyncSink = (*RedisSyncSink)(nil)

func (s *RedisSyncSink) Name() string { return "redis" }

func (s *RedisSyncSink) Write(ctx context.Context, r *models.SyncReport) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal sync report: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, b).Err(); err != nil {
		return fmt.Errorf("push sync report: %w", err)
	}
	if s.maxLen > 0 {
		if err := s.client.LTrim(ctx, s.key, 0, s.maxLen-1).Err(); err != nil {
			return fmt.Errorf("trim sync reports: %w", err)
		}
	}
	return nil
}

func (s *RedisSyncSink) Close() error { return nil }
