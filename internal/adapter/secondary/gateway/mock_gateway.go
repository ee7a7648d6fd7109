package gateway

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// MockSettlementGateway is a local stand-in for the settlement provider.
// Amounts whose cent value ends in 99 are declined; everything else is
// approved. That makes both paths reachable from the amount alone.
type MockSettlementGateway struct {
	// Latency simulates provider round-trip time
	Latency time.Duration
}

// NewMockSettlementGateway creates a mock gateway with a small default latency
func NewMockSettlementGateway() *MockSettlementGateway {
	return &MockSettlementGateway{Latency: 100 * time.Millisecond}
}

// Charge approves or declines based on the amount's cent value
func (g *MockSettlementGateway) Charge(ctx context.Context, amount float64, currency string, paymentID uuid.UUID) (output.ChargeResult, error) {
	select {
	case <-time.After(g.Latency):
	case <-ctx.Done():
		return output.ChargeResult{}, ctx.Err()
	}

	cents := int(math.Round(amount * 100))
	if cents%100 == 99 {
		return output.ChargeResult{Approved: false, DeclineReason: "card_declined"}, nil
	}

	return output.ChargeResult{
		Approved:      true,
		TransactionID: fmt.Sprintf("txn_mock_%s", uuid.New()),
	}, nil
}
