package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventPaymentConfirmed = "payment.confirmed"
	EventPaymentRejected  = "payment.rejected"
	EventPaymentCanceled  = "payment.canceled"
)

// MessageWriter is the part of *kafka.Writer the event bus depends on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Envelope is the JSON document written for every payment event.
type Envelope struct {
	EventID    string             `json:"event_id"`
	EventType  string             `json:"event_type"`
	OccurredAt time.Time          `json:"occurred_at"`
	Payment    ports.PaymentEvent `json:"payment"`
}

// EventBus publishes payment events to a single topic, keyed by cart id.
type EventBus struct {
	writer MessageWriter
	now    func() time.Time
	newID  func() string
}

// NewWriter builds a kafka-go writer for the payments topic.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewEventBus(writer MessageWriter) *EventBus {
	return &EventBus{
		writer: writer,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

func (b *EventBus) PublishPaymentConfirmed(ctx context.Context, event ports.PaymentEvent) error {
	return b.publish(ctx, EventPaymentConfirmed, event)
}

func (b *EventBus) PublishPaymentRejected(ctx context.Context, event ports.PaymentEvent) error {
	return b.publish(ctx, EventPaymentRejected, event)
}

func (b *EventBus) PublishPaymentCanceled(ctx context.Context, event ports.PaymentEvent) error {
	return b.publish(ctx, EventPaymentCanceled, event)
}

// Close flushes pending messages and releases the writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}

func (b *EventBus) publish(ctx context.Context, eventType string, event ports.PaymentEvent) error {
	envelope := Envelope{
		EventID:    b.newID(),
		EventType:  eventType,
		OccurredAt: b.now(),
		Payment:    event,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.CartID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(envelope.EventID)},
		},
	}

	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	return nil
}
