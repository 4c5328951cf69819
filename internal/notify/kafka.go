// Package notify publishes order lifecycle events so downstream consumers
// (email, analytics) can react without coupling into the order flow.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"tradehub-be/internal/logger"
	"tradehub-be/internal/order"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventOrderCreated = "OrderCreated"

	producerName   = "tradehub-api"
	publishTimeout = 2 * time.Second
)

// Envelope is the wire format for every event on the orders topic.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	BuyerEmail string        `json:"buyer_email"`
	Order      order.Summary `json:"order"`
}

// KafkaNotifier implements order.Notifier over a kafka topic.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func newOrderCreatedMessage(buyerEmail string, summary order.Summary) (kafka.Message, error) {
	payload, err := json.Marshal(OrderCreatedPayload{
		BuyerEmail: buyerEmail,
		Order:      summary,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	value, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderCreated,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producerName,
		Payload:      payload,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(summary.OrderID.String()),
		Value: value,
		Time:  time.Now(),
	}, nil
}

func (n *KafkaNotifier) OrderCreated(ctx context.Context, buyerEmail string, summary order.Summary) error {
	msg, err := newOrderCreatedMessage(buyerEmail, summary)
	if err != nil {
		return err
	}

	// Own deadline so a slow broker cannot hold the request hostage.
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.writer.WriteMessages(pubCtx, msg); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order event published",
		zap.String("event_type", EventOrderCreated),
		zap.String("order_number", summary.OrderNumber),
	)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// NoopNotifier is used when no brokers are configured, typically in local
// development.
type NoopNotifier struct{}

func (NoopNotifier) OrderCreated(ctx context.Context, buyerEmail string, summary order.Summary) error {
	logger.FromCtx(ctx).Debug("order notification skipped, no brokers configured",
		zap.String("order_number", summary.OrderNumber),
	)
	return nil
}
