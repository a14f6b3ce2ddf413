// Package kafka publishes answer events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/eventstream"
)

// DefaultTopic receives answer events when no topic is configured.
const DefaultTopic = "medrag.answers"

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config is the configuration for a Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single publish. Defaults to 10 seconds.
	WriteTimeout time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Publisher writes JSON-encoded answer events keyed by event ID.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zap.Logger
}

// NewPublisher creates a publisher backed by a kafka-go Writer.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(w, c), nil
}

func newPublisher(w messageWriter, c Config) *Publisher {
	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Publisher{
		writer:  w,
		timeout: timeout,
		logger:  logger,
	}
}

// PublishAnswer writes one event.
func (p *Publisher) PublishAnswer(ctx context.Context, event *eventstream.AnswerEvent) error {
	if event == nil {
		return eventstream.ErrNilAnswerEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding answer event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.EventID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publishing answer event: %w", err)
	}

	p.logger.Debug("answer event published",
		zap.String("event_id", event.EventID),
		zap.String("status", event.Status),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
