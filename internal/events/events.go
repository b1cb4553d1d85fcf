// Package events publishes order lifecycle events to the message broker.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/matthieukhl/storefront/internal/models"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// Subscriber hands every payload on topic to handler until ctx is done.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
}

// OrderPlaced is emitted once an order and its items are committed.
type OrderPlaced struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	PaymentMethod string    `json:"payment_method"`
	TotalAmount   string    `json:"total_amount"`
	ItemCount     int       `json:"item_count"`
	PlacedAt      time.Time `json:"placed_at"`
}

// NewOrderPlaced builds the event for a persisted order.
func NewOrderPlaced(o *models.Order) OrderPlaced {
	return OrderPlaced{
		OrderID:       o.ID,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		ItemCount:     len(o.Items),
		PlacedAt:      o.CreatedAt,
	}
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) PublishEvent(ctx context.Context, topic string, key string, event any) error { return nil }
func (Noop) Close() error                                                              { return nil }

// Message is one event captured by a Recorder.
type Message struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu       sync.Mutex
	Err      error
	messages []Message
}

func (r *Recorder) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
