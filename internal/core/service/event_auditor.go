package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/payflow/payment-orchestrator/internal/logger"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// EventAuditor consumes terminal payment events and cross-checks them against
// the store, producing the audit trail the worker writes out
type EventAuditor struct {
	store output.PaymentStore
}

// NewEventAuditor creates a new event auditor
func NewEventAuditor(store output.PaymentStore) *EventAuditor {
	return &EventAuditor{store: store}
}

// Audit logs the event and verifies the persisted record agrees with it.
// A mismatch means a write was lost or an event was delivered out of order;
// it is logged loudly but not retried, the store is the source of truth.
func (a *EventAuditor) Audit(ctx context.Context, event output.PaymentEvent) error {
	payment, err := a.store.GetByID(ctx, event.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment for audit: %w", err)
	}

	if payment.Status != event.Status {
		logger.Warn(ctx, "payment event disagrees with stored record",
			zap.String("payment_id", event.PaymentID.String()),
			zap.String("event_status", string(event.Status)),
			zap.String("stored_status", string(payment.Status)),
		)
		return nil
	}

	logger.Info(ctx, "payment event audited",
		zap.String("payment_id", event.PaymentID.String()),
		zap.String("status", string(event.Status)),
		zap.Float64("amount", event.Amount),
		zap.String("currency", string(event.Currency)),
	)
	return nil
}
