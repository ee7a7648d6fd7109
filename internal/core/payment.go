package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusInitiated  PaymentStatus = "INITIATED"
	PaymentStatusValidated  PaymentStatus = "VALIDATED"
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusCaptured   PaymentStatus = "CAPTURED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// Currency represents supported currencies
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// supportedCurrencies is the fixed allow-list; input is normalized to upper case
var supportedCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
}

// NormalizeCurrency upper-cases a currency code and reports whether it is supported
func NormalizeCurrency(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	return c, supportedCurrencies[c]
}

// Payment represents a payment domain entity. Its status only moves forward
// along the transition graph; callers mutate it exclusively through the
// transition methods below, never by assigning fields directly.
type Payment struct {
	ID                   uuid.UUID
	Amount               float64
	Currency             Currency
	Status               PaymentStatus
	GatewayTransactionID string
	FailureReason        string
	CreatedAt            time.Time
	ProcessedAt          *time.Time
}

// NewPayment constructs a payment in the Initiated state. It rejects
// non-positive amounts and unsupported currencies before any side effect.
func NewPayment(amount float64, currency string) (*Payment, error) {
	if amount <= 0 {
		return nil, &InvalidArgumentError{Field: "amount", Reason: "must be greater than zero"}
	}
	cur, ok := NormalizeCurrency(currency)
	if !ok {
		return nil, &InvalidArgumentError{Field: "currency", Reason: "must be one of USD, EUR, GBP"}
	}

	return &Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Currency:  cur,
		Status:    PaymentStatusInitiated,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate moves the payment from Initiated to Validated
func (p *Payment) Validate() error {
	if p.Status != PaymentStatusInitiated {
		return &StateTransitionError{Current: p.Status, Operation: "validate"}
	}
	p.Status = PaymentStatusValidated
	return nil
}

// Authorize moves the payment from Validated to Authorized and records the
// gateway transaction reference
func (p *Payment) Authorize(transactionID string) error {
	if p.Status != PaymentStatusValidated {
		return &StateTransitionError{Current: p.Status, Operation: "authorize"}
	}
	p.Status = PaymentStatusAuthorized
	p.GatewayTransactionID = transactionID
	return nil
}

// Capture moves the payment from Authorized to Captured
func (p *Payment) Capture() error {
	if p.Status != PaymentStatusAuthorized {
		return &StateTransitionError{Current: p.Status, Operation: "capture"}
	}
	p.Status = PaymentStatusCaptured
	p.markProcessed()
	return nil
}

// Cancel moves the payment from Authorized to Cancelled. Cancelling requires
// a prior authorization; there is nothing to release before that.
func (p *Payment) Cancel() error {
	if p.Status != PaymentStatusAuthorized {
		return &StateTransitionError{Current: p.Status, Operation: "cancel"}
	}
	p.Status = PaymentStatusCancelled
	p.markProcessed()
	return nil
}

// MarkFailed moves the payment to Failed from any non-terminal state and
// records the failure reason
func (p *Payment) MarkFailed(reason string) error {
	if p.IsTerminal() {
		return &StateTransitionError{Current: p.Status, Operation: "markFailed"}
	}
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.markProcessed()
	return nil
}

func (p *Payment) markProcessed() {
	now := time.Now().UTC()
	p.ProcessedAt = &now
}

// IsTerminal checks if payment is in a terminal state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCaptured ||
		p.Status == PaymentStatusCancelled ||
		p.Status == PaymentStatusFailed
}

// IsConfirmable checks if the payment can still enter the confirmation flow
func (p *Payment) IsConfirmable() bool {
	return p.Status == PaymentStatusInitiated
}

// Clone returns a copy of the payment so callers get a projection that cannot
// mutate the stored record
func (p *Payment) Clone() *Payment {
	cp := *p
	if p.ProcessedAt != nil {
		t := *p.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}
