package input

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/payflow/payment-orchestrator/internal/core"
)

// PaymentService is an input port (primary port) for payment orchestration
// Primary adapters (HTTP handlers) will use this
type PaymentService interface {
	// Initiate creates a new payment in the Initiated state
	Initiate(ctx context.Context, req InitiatePaymentRequest) (*PaymentResponse, error)

	// Confirm drives a payment through validation, authorization with the
	// settlement gateway and capture, returning the terminal record
	Confirm(ctx context.Context, id uuid.UUID) (*PaymentResponse, error)

	// Get retrieves a payment by ID
	Get(ctx context.Context, id uuid.UUID) (*PaymentResponse, error)
}

// InitiatePaymentRequest represents the request to create a payment
type InitiatePaymentRequest struct {
	Amount   float64
	Currency string
}

// PaymentResponse represents a read-only projection of a payment
type PaymentResponse struct {
	ID                   uuid.UUID
	Amount               float64
	Currency             core.Currency
	Status               core.PaymentStatus
	GatewayTransactionID string
	FailureReason        string
	CreatedAt            time.Time
	ProcessedAt          *time.Time
}

// FromPayment builds a response projection from the domain entity
func FromPayment(p *core.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                   p.ID,
		Amount:               p.Amount,
		Currency:             p.Currency,
		Status:               p.Status,
		GatewayTransactionID: p.GatewayTransactionID,
		FailureReason:        p.FailureReason,
		CreatedAt:            p.CreatedAt,
		ProcessedAt:          p.ProcessedAt,
	}
}
