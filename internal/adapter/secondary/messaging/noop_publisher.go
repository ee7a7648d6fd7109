package messaging

import (
	"context"

	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// NoopPublisher discards payment events. It backs broker-less runs and tests.
type NoopPublisher struct{}

// PublishPaymentEvent drops the event
func (NoopPublisher) PublishPaymentEvent(context.Context, output.PaymentEvent) error {
	return nil
}

// Close is a no-op
func (NoopPublisher) Close() error {
	return nil
}
