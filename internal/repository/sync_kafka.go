package repository

import (
	"context"
	"fmt"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
)

// KeyedPublisher is the part of pkg/kafka.Producer the sink needs.
type KeyedPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaSyncSink publishes sync reports to a topic keyed by view id.
type KafkaSyncSink struct {
	producer KeyedPublisher
	topic    string
}

// NewKafkaSyncSink creates a Kafka sink. The producer is shared and closed by its owner.
func NewKafkaSyncSink(producer KeyedPublisher, topic string) *KafkaSyncSink {
	return &KafkaSyncSink{producer: producer, topic: topic}
}

var _ domrepo.SyncSink = (*KafkaSyncSink)(nil)

func (s *KafkaSyncSink) Name() string { return "kafka" }

func (s *KafkaSyncSink) Write(ctx context.Context, r *models.SyncReport) error {
	if err := s.producer.Publish(ctx, s.topic, []byte(r.ViewID), r); err != nil {
		return fmt.Errorf("publish sync report: %w", err)
	}
	return nil
}

func (s *KafkaSyncSink) Close() error { return nil }
