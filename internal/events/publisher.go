// Package events publishes domain events (currently review submissions) to
// Kafka. When no brokers are configured a no-op publisher is used.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ReviewSubmitted is the payload written for every stored review.
type ReviewSubmitted struct {
	ReviewID    string    `json:"reviewId"`
	BusinessID  string    `json:"businessId"`
	Rating      int       `json:"rating"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Publisher delivers review events.
type Publisher interface {
	PublishReview(ctx context.Context, evt ReviewSubmitted) error
	Close() error
}

// KafkaWriter is the subset of *kafka.Writer used here, so tests can mock it.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer KafkaWriter
	logr   *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logr *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(w, logr)
}

func NewPublisherWithWriter(w KafkaWriter, logr *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logr: logr}
}

// PublishReview writes evt keyed by business id so one business's reviews
// stay on a single partition.
func (p *KafkaPublisher) PublishReview(ctx context.Context, evt ReviewSubmitted) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal review event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.BusinessID),
		Value: value,
		Time:  evt.SubmittedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write review event: %w", err)
	}

	p.logr.Debug("review event published",
		zap.String("review_id", evt.ReviewID),
		zap.String("business_id", evt.BusinessID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishReview(context.Context, ReviewSubmitted) error { return nil }
func (NopPublisher) Close() error { return nil }

// New returns a Kafka publisher when brokers are set, else a NopPublisher.
func New(brokers []string, topic string, logr *zap.Logger) Publisher {
	if len(brokers) == 0 {
		logr.Info("kafka brokers not configured, review events disabled")
		return NopPublisher{}
	}
	logr.Info("review events enabled", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return NewKafkaPublisher(brokers, topic, logr)
}
