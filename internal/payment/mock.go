package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockGateway records requests and returns fake session ids. Setting Err
// makes every call fail with it.
type MockGateway struct {
	mu       sync.Mutex
	Err      error
	requests []SessionRequest
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.Err != nil {
		return nil, g.Err
	}
	id := "cs_mock_" + uuid.NewString()
	return &Session{ID: id, URL: "https://checkout.invalid/pay/" + id}, nil
}

// Requests returns a copy of every request received so far.
func (g *MockGateway) Requests() []SessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SessionRequest(nil), g.requests...)
}
