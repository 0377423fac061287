package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Event types
const (
	EventPredictionCompleted = "prediction.completed"
)

const eventVersion = "1.0"

// BatchPublisher writes messages to a topic; satisfied by kafka.Producer
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []kafka.Message) error
	Close() error
}

// BaseEvent is the envelope shared by every event
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// PredictionCompletedEvent is published for every successful prediction
type PredictionCompletedEvent struct {
	BaseEvent
	Prediction graduation.PredictionRecord `json:"prediction"`
}

// Publisher publishes prediction events to Kafka.
// It implements graduation.Sink so the prediction log can fan out to it.
type Publisher struct {
	producer BatchPublisher
	topic    string
	source   string
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer BatchPublisher, topic, source string, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		source:   source,
		log:      log.Component("event_publisher"),
	}
}

// Name implements graduation.Sink
func (p *Publisher) Name() string {
	return "kafka"
}

// Record publishes one event per record, keyed by prediction id
func (p *Publisher) Record(ctx context.Context, records []graduation.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		event := PredictionCompletedEvent{
			BaseEvent: BaseEvent{
				ID:        rec.ID,
				Type:      EventPredictionCompleted,
				Timestamp: rec.Timestamp,
				Source:    p.source,
				Version:   eventVersion,
			},
			Prediction: rec,
		}

		data, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "marshal prediction event")
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(rec.ID),
			Value: data,
		})
	}

	if err := p.producer.PublishBatch(ctx, p.topic, messages); err != nil {
		return errors.Wrap(err, "send to kafka")
	}

	p.log.Debugw("Events published", "topic", p.topic, "count", len(messages))
	return nil
}

// Close closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}

var _ graduation.Sink = (*Publisher)(nil)
