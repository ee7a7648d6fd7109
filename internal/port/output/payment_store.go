package output

import (
	"context"

	"github.com/google/uuid"
	"github.com/payflow/payment-orchestrator/internal/core"
)

// PaymentStore is an output port (secondary port) for payment persistence
// Secondary adapters (database implementations) will implement this
type PaymentStore interface {
	// Save persists the payment, inserting or overwriting by ID.
	// The store guarantees at least last-writer-wins semantics.
	Save(ctx context.Context, payment *core.Payment) error

	// GetByID retrieves a payment by its ID, or core.ErrPaymentNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error)
}
