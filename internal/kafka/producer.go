package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/trogers1052/portfolio-advisor/internal/models"
)

// Producer publishes action-change notification events. The core only
// signals that a notification should fire; delivery to users happens in
// the downstream notification service that consumes this topic.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishActionChanged publishes an action-change event keyed by symbol
func (p *Producer) PublishActionChanged(ctx context.Context, userID, symbol, oldAction, newAction, reason string) error {
	event := models.ActionChangeEvent{
		EventType: "ACTION_CHANGED",
		UserID:    userID,
		Symbol:    symbol,
		OldAction: oldAction,
		NewAction: newAction,
		Reason:    reason,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(symbol),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
