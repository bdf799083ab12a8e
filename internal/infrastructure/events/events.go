package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type EventType string

const (
	TaskSucceeded       EventType = "task.succeeded"
	TaskFailed          EventType = "task.failed"
	RecordingFinalized  EventType = "recording.finalized"
	ConcatenationFailed EventType = "recording.concatenation_failed"
)

type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data"`
}

func NewEvent(eventType EventType, source, subject string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Subject:   subject,
		Data:      data,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher emits pipeline lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// KafkaPublisher writes events to a topic keyed by subject id
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Subject),
		Value: data,
	}); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Failed to publish event",
				zap.String("type", string(event.Type)),
				zap.String("subject", event.Subject),
				zap.Error(err),
			)
		}
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event; used when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// New returns a Kafka publisher when brokers are set, otherwise a no-op
func New(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NoopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic, logger)
}
