package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// chargeRequest is the wire format sent to the settlement provider
type chargeRequest struct {
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// chargeResponse is the wire format returned by the settlement provider
type chargeResponse struct {
	Approved      bool   `json:"approved"`
	TransactionID string `json:"transaction_id"`
	DeclineReason string `json:"decline_reason"`
}

// HTTPSettlementGateway is a secondary adapter that implements the
// SettlementGateway output port against a provider's HTTP charge endpoint
type HTTPSettlementGateway struct {
	client  *http.Client
	baseURL string
}

// NewHTTPSettlementGateway creates a new HTTP settlement gateway client
func NewHTTPSettlementGateway(baseURL string, timeout time.Duration) *HTTPSettlementGateway {
	return &HTTPSettlementGateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Charge posts a charge request to the provider. Transport failures and
// non-2xx responses are infrastructure errors; a decline comes back inside a
// 2xx response body.
func (g *HTTPSettlementGateway) Charge(ctx context.Context, amount float64, currency string, paymentID uuid.UUID) (output.ChargeResult, error) {
	payload, err := json.Marshal(chargeRequest{
		PaymentID: paymentID.String(),
		Amount:    amount,
		Currency:  currency,
	})
	if err != nil {
		return output.ChargeResult{}, &core.GatewayError{Err: fmt.Errorf("failed to marshal charge request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(payload))
	if err != nil {
		return output.ChargeResult{}, &core.GatewayError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return output.ChargeResult{}, &core.GatewayError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return output.ChargeResult{}, &core.GatewayError{Err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}

	var body chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return output.ChargeResult{}, &core.GatewayError{Err: fmt.Errorf("failed to decode charge response: %w", err)}
	}

	return output.ChargeResult{
		Approved:      body.Approved,
		TransactionID: body.TransactionID,
		DeclineReason: body.DeclineReason,
	}, nil
}
