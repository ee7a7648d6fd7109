package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/memory"
	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/core/service"
	"github.com/payflow/payment-orchestrator/internal/port/input"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

type fakeGateway struct {
	calls    atomic.Int32
	chargeFn func(ctx context.Context, amount float64, currency string, paymentID uuid.UUID) (output.ChargeResult, error)
}

func (f *fakeGateway) Charge(ctx context.Context, amount float64, currency string, paymentID uuid.UUID) (output.ChargeResult, error) {
	f.calls.Add(1)
	return f.chargeFn(ctx, amount, currency, paymentID)
}

type fakeEvents struct {
	published []output.PaymentEvent
}

func (f *fakeEvents) PublishPaymentEvent(_ context.Context, event output.PaymentEvent) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEvents) Close() error { return nil }

func approvingGateway(txn string) *fakeGateway {
	return &fakeGateway{
		chargeFn: func(context.Context, float64, string, uuid.UUID) (output.ChargeResult, error) {
			return output.ChargeResult{Approved: true, TransactionID: txn}, nil
		},
	}
}

func newService(store *memory.PaymentStore, gw *fakeGateway, events *fakeEvents) input.PaymentService {
	return service.NewPaymentService(store, gw, events, time.Second)
}

func TestInitiate_WithValidArguments_ShouldPersistInitiatedPayment(t *testing.T) {
	// arrange
	store := memory.NewPaymentStore()
	svc := newService(store, approvingGateway("txn_1"), &fakeEvents{})

	// act
	resp, err := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 100.00, Currency: "USD"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusInitiated, resp.Status)
	assert.Equal(t, 100.00, resp.Amount)
	assert.Equal(t, core.CurrencyUSD, resp.Currency)

	stored, err := store.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusInitiated, stored.Status)
}

func TestInitiate_WithInvalidArguments_ShouldNotPersist(t *testing.T) {
	store := memory.NewPaymentStore()
	svc := newService(store, approvingGateway("txn_1"), &fakeEvents{})

	_, err := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: -5, Currency: "USD"})
	var argErr *core.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)

	_, err = svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 5, Currency: "XXX"})
	require.ErrorAs(t, err, &argErr)

	assert.Equal(t, 0, store.Len())
}

func TestConfirm_WhenGatewayApproves_ShouldCapture(t *testing.T) {
	// arrange
	store := memory.NewPaymentStore()
	gw := approvingGateway("txn_1")
	events := &fakeEvents{}
	svc := newService(store, gw, events)

	created, err := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 100.00, Currency: "USD"})
	require.NoError(t, err)

	// act
	resp, err := svc.Confirm(context.Background(), created.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusCaptured, resp.Status)
	assert.Equal(t, "txn_1", resp.GatewayTransactionID)
	assert.NotNil(t, resp.ProcessedAt)
	assert.Equal(t, int32(1), gw.calls.Load())

	stored, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusCaptured, stored.Status)

	require.Len(t, events.published, 1)
	assert.Equal(t, core.PaymentStatusCaptured, events.published[0].Status)
	assert.Equal(t, "txn_1", events.published[0].TransactionID)
}

func TestConfirm_WhenGatewayDeclines_ShouldFailWithReasonVerbatim(t *testing.T) {
	store := memory.NewPaymentStore()
	gw := &fakeGateway{
		chargeFn: func(context.Context, float64, string, uuid.UUID) (output.ChargeResult, error) {
			return output.ChargeResult{Approved: false, DeclineReason: "card_declined"}, nil
		},
	}
	events := &fakeEvents{}
	svc := newService(store, gw, events)

	created, _ := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 10, Currency: "EUR"})

	resp, err := svc.Confirm(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusFailed, resp.Status)
	assert.Equal(t, "card_declined", resp.FailureReason)
	assert.NotNil(t, resp.ProcessedAt)

	// failure is durably recorded
	stored, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusFailed, stored.Status)
	assert.Equal(t, "card_declined", stored.FailureReason)

	require.Len(t, events.published, 1)
	assert.Equal(t, core.PaymentStatusFailed, events.published[0].Status)
}

func TestConfirm_WhenGatewayErrors_ShouldFailWithSystemReason(t *testing.T) {
	store := memory.NewPaymentStore()
	gw := &fakeGateway{
		chargeFn: func(context.Context, float64, string, uuid.UUID) (output.ChargeResult, error) {
			return output.ChargeResult{}, errors.New("connection reset")
		},
	}
	svc := newService(store, gw, &fakeEvents{})

	created, _ := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 10, Currency: "EUR"})

	resp, err := svc.Confirm(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusFailed, resp.Status)
	assert.Equal(t, "system_error", resp.FailureReason)

	stored, _ := store.GetByID(context.Background(), created.ID)
	assert.Equal(t, core.PaymentStatusFailed, stored.Status)
}

func TestConfirm_WhenGatewayTimesOut_ShouldFail(t *testing.T) {
	store := memory.NewPaymentStore()
	gw := &fakeGateway{
		chargeFn: func(ctx context.Context, _ float64, _ string, _ uuid.UUID) (output.ChargeResult, error) {
			<-ctx.Done()
			return output.ChargeResult{}, ctx.Err()
		},
	}
	svc := service.NewPaymentService(store, gw, &fakeEvents{}, 20*time.Millisecond)

	created, _ := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 10, Currency: "USD"})

	resp, err := svc.Confirm(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusFailed, resp.Status)
	assert.Equal(t, "system_error", resp.FailureReason)
}

func TestConfirm_Twice_ShouldNotChargeAgain(t *testing.T) {
	store := memory.NewPaymentStore()
	gw := approvingGateway("txn_1")
	svc := newService(store, gw, &fakeEvents{})

	created, _ := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 100.00, Currency: "USD"})

	first, err := svc.Confirm(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := svc.Confirm(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, int32(1), gw.calls.Load())
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.GatewayTransactionID, second.GatewayTransactionID)
	assert.Equal(t, *first.ProcessedAt, *second.ProcessedAt)
}

func TestConfirm_UnknownPayment_ShouldReturnNotFound(t *testing.T) {
	svc := newService(memory.NewPaymentStore(), approvingGateway("txn"), &fakeEvents{})

	_, err := svc.Confirm(context.Background(), uuid.New())

	assert.ErrorIs(t, err, core.ErrPaymentNotFound)
}

func TestConfirm_AlreadyFailedPayment_ShouldConflictNotNotFound(t *testing.T) {
	store := memory.NewPaymentStore()
	gw := &fakeGateway{
		chargeFn: func(context.Context, float64, string, uuid.UUID) (output.ChargeResult, error) {
			return output.ChargeResult{Approved: false, DeclineReason: "card_declined"}, nil
		},
	}
	svc := newService(store, gw, &fakeEvents{})

	created, _ := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 10, Currency: "USD"})
	_, err := svc.Confirm(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), created.ID)

	var stateErr *core.StateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, core.PaymentStatusFailed, stateErr.Current)
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestGet_ReturnsStoredPayment(t *testing.T) {
	store := memory.NewPaymentStore()
	svc := newService(store, approvingGateway("txn"), &fakeEvents{})

	created, _ := svc.Initiate(context.Background(), input.InitiatePaymentRequest{Amount: 42, Currency: "gbp"})

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, core.CurrencyGBP, got.Currency)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, core.ErrPaymentNotFound)
}
