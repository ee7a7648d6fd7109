package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/logger"
	"github.com/payflow/payment-orchestrator/internal/port/input"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// systemErrorReason marks failures caused by the gateway call itself erroring,
// as opposed to the gateway declining the charge
const systemErrorReason = "system_error"

// PaymentServiceImpl implements the PaymentService input port
type PaymentServiceImpl struct {
	store          output.PaymentStore
	gateway        output.SettlementGateway
	events         output.PaymentEvents
	gatewayTimeout time.Duration
}

// NewPaymentService creates a new payment orchestration service. events may be
// nil when no broker is configured.
func NewPaymentService(
	store output.PaymentStore,
	gateway output.SettlementGateway,
	events output.PaymentEvents,
	gatewayTimeout time.Duration,
) input.PaymentService {
	return &PaymentServiceImpl{
		store:          store,
		gateway:        gateway,
		events:         events,
		gatewayTimeout: gatewayTimeout,
	}
}

// Initiate creates a new payment in the Initiated state and persists it.
// Argument errors are rejected before anything is written.
func (s *PaymentServiceImpl) Initiate(ctx context.Context, req input.InitiatePaymentRequest) (*input.PaymentResponse, error) {
	payment, err := core.NewPayment(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info(ctx, "payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.Float64("amount", payment.Amount),
		zap.String("currency", string(payment.Currency)),
	)

	return input.FromPayment(payment), nil
}

// Confirm drives the payment through validate -> authorize -> capture. Every
// path ends with a persisted record: gateway declines and gateway errors both
// land the payment in Failed before returning, so a retry never finds the
// record stranded mid-flow.
func (s *PaymentServiceImpl) Confirm(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	payment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Domain-level idempotency: confirming an already-captured payment is a
	// no-op, the gateway is not called again.
	if payment.Status == core.PaymentStatusCaptured {
		logger.Info(ctx, "payment already captured", zap.String("payment_id", id.String()))
		return input.FromPayment(payment), nil
	}

	if !payment.IsConfirmable() {
		return nil, &core.StateTransitionError{Current: payment.Status, Operation: "confirm"}
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	result, err := s.charge(ctx, payment)
	if err != nil {
		// Infrastructure failure: record it durably, then report the failed
		// record as data rather than re-signaling.
		logger.Error(ctx, "gateway call failed", err, zap.String("payment_id", id.String()))
		return s.fail(ctx, payment, systemErrorReason)
	}

	if !result.Approved {
		reason := result.DeclineReason
		if reason == "" {
			reason = "unknown gateway decline"
		}
		logger.Warn(ctx, "payment declined",
			zap.String("payment_id", id.String()),
			zap.String("reason", reason),
		)
		return s.fail(ctx, payment, reason)
	}

	if err := payment.Authorize(result.TransactionID); err != nil {
		return s.fail(ctx, payment, systemErrorReason)
	}
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	if err := payment.Capture(); err != nil {
		return s.fail(ctx, payment, systemErrorReason)
	}
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info(ctx, "payment captured",
		zap.String("payment_id", id.String()),
		zap.String("transaction_id", payment.GatewayTransactionID),
	)

	s.publish(ctx, payment)
	return input.FromPayment(payment), nil
}

// Get retrieves a payment by ID
func (s *PaymentServiceImpl) Get(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	payment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return input.FromPayment(payment), nil
}

// charge invokes the settlement gateway exactly once, bounded by the
// configured timeout. A timeout counts as a gateway error.
func (s *PaymentServiceImpl) charge(ctx context.Context, payment *core.Payment) (output.ChargeResult, error) {
	chargeCtx := ctx
	if s.gatewayTimeout > 0 {
		var cancel context.CancelFunc
		chargeCtx, cancel = context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
	}

	result, err := s.gateway.Charge(chargeCtx, payment.Amount, string(payment.Currency), payment.ID)
	if err != nil {
		var gwErr *core.GatewayError
		if !errors.As(err, &gwErr) {
			err = &core.GatewayError{Err: err}
		}
		return output.ChargeResult{}, err
	}
	return result, nil
}

// fail transitions the payment to Failed with the given reason and persists
// it, returning the failed record as the operation result
func (s *PaymentServiceImpl) fail(ctx context.Context, payment *core.Payment, reason string) (*input.PaymentResponse, error) {
	if err := payment.MarkFailed(reason); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save failed payment: %w", err)
	}
	s.publish(ctx, payment)
	return input.FromPayment(payment), nil
}

// publish emits a terminal lifecycle event. Delivery failures are logged and
// never fail the request.
func (s *PaymentServiceImpl) publish(ctx context.Context, payment *core.Payment) {
	if s.events == nil {
		return
	}

	event := output.PaymentEvent{
		PaymentID:     payment.ID,
		Status:        payment.Status,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		TransactionID: payment.GatewayTransactionID,
		FailureReason: payment.FailureReason,
		OccurredAt:    time.Now().UTC(),
	}

	if err := s.events.PublishPaymentEvent(ctx, event); err != nil {
		logger.Error(ctx, "failed to publish payment event", err,
			zap.String("payment_id", payment.ID.String()),
		)
	}
}
