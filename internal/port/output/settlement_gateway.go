package output

import (
	"context"

	"github.com/google/uuid"
)

// ChargeResult is the gateway's answer to a charge attempt. A decline
// (Approved == false) is a business outcome; infrastructure failures are
// returned as an error instead.
type ChargeResult struct {
	Approved      bool
	TransactionID string
	DeclineReason string
}

// SettlementGateway is an output port (secondary port) for the external
// settlement provider that actually moves funds
type SettlementGateway interface {
	// Charge reserves and captures funds for the payment. The call may be
	// slow; implementations must honor the context deadline. A non-nil
	// error means the call itself failed, not that the charge was declined.
	Charge(ctx context.Context, amount float64, currency string, paymentID uuid.UUID) (ChargeResult, error)
}
