package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/matthieukhl/storefront/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriber struct {
	payloads [][]byte
	topic    string
	group    string
	errs     []error
}

func (s *stubSubscriber) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	s.topic, s.group = topic, groupID
	for _, p := range s.payloads {
		s.errs = append(s.errs, handler(ctx, p))
	}
}

func TestFollowOrdersPrintsEvents(t *testing.T) {
	ev, err := json.Marshal(events.OrderPlaced{
		OrderID:       "o1",
		PaymentMethod: "cod",
		TotalAmount:   "49.99",
		ItemCount:     2,
		PlacedAt:      time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sub := &stubSubscriber{payloads: [][]byte{ev, []byte("not json")}}
	var out bytes.Buffer
	followOrders(context.Background(), sub, "orders.placed", "cli", &out)

	assert.Equal(t, "orders.placed", sub.topic)
	assert.Equal(t, "cli", sub.group)
	assert.Equal(t, "🛒 10:30:00  o1  cod  2 items  49.99\n", out.String())
	require.Len(t, sub.errs, 2)
	assert.NoError(t, sub.errs[0])
	assert.Error(t, sub.errs[1])
}
