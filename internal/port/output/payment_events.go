package output

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/payflow/payment-orchestrator/internal/core"
)

// PaymentEvent describes a payment reaching a terminal state
type PaymentEvent struct {
	PaymentID     uuid.UUID          `json:"payment_id"`
	Status        core.PaymentStatus `json:"status"`
	Amount        float64            `json:"amount"`
	Currency      core.Currency      `json:"currency"`
	TransactionID string             `json:"transaction_id,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// PaymentEvents is an output port (secondary port) for publishing payment
// lifecycle events. Publishing is best-effort: the orchestration flow never
// fails because an event could not be delivered.
type PaymentEvents interface {
	// PublishPaymentEvent publishes a terminal lifecycle event
	PublishPaymentEvent(ctx context.Context, event PaymentEvent) error
	// Close closes the messaging connection
	Close() error
}
