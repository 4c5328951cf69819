package notify

import (
	"context"
	"encoding/json"
	"testing"

	"tradehub-be/internal/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderCreatedMessage(t *testing.T) {
	summary := order.Summary{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-20250101-120000-001-0001",
		TotalAmount: 260.50,
		Items: []order.ItemSummary{
			{Title: "Camera", Quantity: 2, Price: 125.00},
		},
	}

	msg, err := newOrderCreatedMessage("buyer@example.com", summary)
	require.NoError(t, err)

	// Keyed by order id so all events for one order land on one partition.
	assert.Equal(t, summary.OrderID.String(), string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, EventOrderCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, producerName, env.Producer)
	assert.NotEmpty(t, env.EventID)
	assert.False(t, env.OccurredAt.IsZero())

	var payload OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "buyer@example.com", payload.BuyerEmail)
	assert.Equal(t, summary.OrderNumber, payload.Order.OrderNumber)
	require.Len(t, payload.Order.Items, 1)
	assert.Equal(t, "Camera", payload.Order.Items[0].Title)
}

func TestNoopNotifier(t *testing.T) {
	err := NoopNotifier{}.OrderCreated(context.Background(), "buyer@example.com", order.Summary{})
	assert.NoError(t, err)
}
