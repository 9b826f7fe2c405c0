// Package events publishes workflow events for downstream consumers.
// Publishing is best-effort: a broker outage never fails the workflow.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TopicActivityCreated receives one event per successfully created activity.
const TopicActivityCreated = "activity_created"

// ActivityCreated describes a created activity for downstream consumers.
type ActivityCreated struct {
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id"`
	ActivityID      int64     `json:"activity_id"`
	SportType       string    `json:"sport_type"`
	DurationMinutes float64   `json:"duration_minutes"`
	DistanceMeters  float64   `json:"distance_meters,omitempty"`
	Confidence      float64   `json:"confidence,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

// Publisher emits workflow events.
type Publisher interface {
	PublishActivityCreated(ctx context.Context, event ActivityCreated) error
}

// messageWriter is the kafka-go writer surface, narrowed for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	logger *log.Logger
}

// NewKafkaPublisher builds a publisher for the given brokers.
func NewKafkaPublisher(brokers []string, logger *log.Logger) *KafkaPublisher {
	if logger == nil {
		logger = log.Default()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicActivityCreated,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// PublishActivityCreated emits one activity.created event keyed by user.
func (p *KafkaPublisher) PublishActivityCreated(ctx context.Context, event ActivityCreated) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity.created")},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events, used when no brokers are configured.
type NopPublisher struct{}

// PublishActivityCreated implements Publisher.
func (NopPublisher) PublishActivityCreated(ctx context.Context, event ActivityCreated) error {
	return nil
}
