package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topics  []string
	batches [][]AggregatedEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.batches = append(p.batches, payload.([]AggregatedEntry))
	return nil
}

func (p *capturePublisher) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		for _, e := range b {
			n += e.Count
		}
	}
	return n
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).Component("sync")
	l.Info("background sync", String("total", "$5,000"), Int("count", 2), Float64("average", 2500), Bool("ok", true))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "background sync", line["message"])
	assert.Equal(t, "sync", line["component"])
	assert.Equal(t, "$5,000", line["total"])
	assert.Equal(t, float64(2), line["count"])
	assert.Equal(t, float64(2500), line["average"])
	assert.Equal(t, true, line["ok"])
}

func TestLoggerWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).With(String("view_id", "v1"))
	l.Warn("slow")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "v1", line["view_id"])
	assert.Equal(t, "warn", line["level"])
}

func TestErrorCollectorAggregatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewErrorCollector(CollectorConfig{Interval: time.Hour, MaxEntries: 100, Topic: "logs", Publisher: pub})

	l := NewNop()
	l.AttachCollector(c)
	for i := 0; i < 3; i++ {
		l.Error("sink write failed", String("sink", "kafka"), Error(errors.New("boom")))
	}
	l.Error("other failure")
	assert.Equal(t, 2, c.Pending())

	l.DetachCollector()
	assert.Equal(t, 4, pub.total())
	require.NotEmpty(t, pub.topics)
	assert.Equal(t, "logs", pub.topics[0])
}

func TestErrorCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewErrorCollector(CollectorConfig{Interval: time.Hour, MaxEntries: 2, Publisher: pub})
	defer c.Close()

	c.Add("error", "a", nil, "x.go:1")
	c.Add("error", "b", nil, "x.go:2")

	assert.Eventually(t, func() bool { return pub.total() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, c.Pending())
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}
