package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/payflow/payment-orchestrator/internal/core"
)

// PaymentStore is an in-memory implementation of the PaymentStore output
// port, used by tests and broker-less local runs
type PaymentStore struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*core.Payment
}

// NewPaymentStore creates a new in-memory payment store
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		payments: make(map[uuid.UUID]*core.Payment),
	}
}

// Save persists the payment, inserting or overwriting by ID
func (s *PaymentStore) Save(_ context.Context, payment *core.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments[payment.ID] = payment.Clone()
	return nil
}

// GetByID retrieves a payment by its ID
func (s *PaymentStore) GetByID(_ context.Context, id uuid.UUID) (*core.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, core.ErrPaymentNotFound
	}
	return p.Clone(), nil
}

// Len reports how many payments are stored
func (s *PaymentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}
