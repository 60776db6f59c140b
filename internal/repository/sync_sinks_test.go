package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"PortfolioAssist/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	topic string
	key   []byte
	value interface{}
	err   error
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func testReport() *models.SyncReport {
	return &models.SyncReport{
		ViewID:  "view-7",
		At:      time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
		Total:   7500,
		Count:   3,
		Average: 2500,
	}
}

func TestKafkaSyncSinkWrite(t *testing.T) {
	p := &fakeProducer{}
	sink := NewKafkaSyncSink(p, "portfolio.sync")

	require.NoError(t, sink.Write(context.Background(), testReport()))
	assert.Equal(t, "kafka", sink.Name())
	assert.Equal(t, "portfolio.sync", p.topic)
	assert.Equal(t, []byte("view-7"), p.key)

	b, err := json.Marshal(p.value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"viewId":"view-7","at":"2026-05-01T09:30:00Z","total":7500,"count":3,"average":2500}`, string(b))
}

func TestKafkaSyncSinkWrapsError(t *testing.T) {
	boom := errors.New("broker down")
	sink := NewKafkaSyncSink(&fakeProducer{err: boom}, "t")
	err := sink.Write(context.Background(), testReport())
	assert.ErrorIs(t, err, boom)
}

func TestClickHouseSyncSinkWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := testReport()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO portfolio_sync (ts, view_id, total, count, average) VALUES (?, ?, ?, ?, ?)")).
		WithArgs(r.At, r.ViewID, r.Total, int64(3), r.Average).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewClickHouseSyncSink(db, "")
	require.NoError(t, sink.Write(context.Background(), r))
	assert.Equal(t, "clickhouse", sink.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseSyncSinkError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO sync_custom").WillReturnError(errors.New("timeout"))
	err = NewClickHouseSyncSink(db, "sync_custom").Write(context.Background(), testReport())
	assert.ErrorContains(t, err, "insert sync report")
}

func TestSyncSchema(t *testing.T) {
	stmts := SyncSchema("portfolio_sync")
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS portfolio_sync")
}

type fakeList struct {
	key      string
	pushed   []interface{}
	trimStop int64
	trimmed  bool
	pushErr  error
}

func (l *fakeList) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	l.key = key
	l.pushed = append(l.pushed, values...)
	return redis.NewIntResult(int64(len(l.pushed)), l.pushErr)
}

func (l *fakeList) LTrim(_ context.Context, _ string, _, stop int64) *redis.StatusCmd {
	l.trimmed, l.trimStop = true, stop
	return redis.NewStatusResult("OK", nil)
}

func TestRedisSyncSinkWrite(t *testing.T) {
	l := &fakeList{}
	sink := NewRedisSyncSink(l, "", 100)

	require.NoError(t, sink.Write(context.Background(), testReport()))
	assert.Equal(t, "redis", sink.Name())
	assert.Equal(t, "portfolio:sync", l.key)
	require.Len(t, l.pushed, 1)
	assert.JSONEq(t, `{"viewId":"view-7","at":"2026-05-01T09:30:00Z","total":7500,"count":3,"average":2500}`, string(l.pushed[0].([]byte)))
	assert.True(t, l.trimmed)
	assert.Equal(t, int64(99), l.trimStop)
}

func TestRedisSyncSinkUncapped(t *testing.T) {
	l := &fakeList{}
	require.NoError(t, NewRedisSyncSink(l, "reports", 0).Write(context.Background(), testReport()))
	assert.Equal(t, "reports", l.key)
	assert.False(t, l.trimmed)
}

func TestRedisSyncSinkPushError(t *testing.T) {
	l := &fakeList{pushErr: errors.New("READONLY")}
	err := NewRedisSyncSink(l, "k", 10).Write(context.Background(), testReport())
	assert.ErrorContains(t, err, "push sync report")
	assert.False(t, l.trimmed)
}
