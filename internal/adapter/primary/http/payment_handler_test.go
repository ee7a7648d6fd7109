package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/payflow/payment-orchestrator/internal/adapter/primary/http"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/memory"
	"github.com/payflow/payment-orchestrator/internal/adapter/secondary/messaging"
	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/core/service"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

type stubGateway struct {
	result output.ChargeResult
	err    error
}

func (s *stubGateway) Charge(context.Context, float64, string, uuid.UUID) (output.ChargeResult, error) {
	return s.result, s.err
}

func newServer(gw output.SettlementGateway) *echo.Echo {
	store := memory.NewPaymentStore()
	svc := service.NewPaymentService(store, gw, messaging.NoopPublisher{}, time.Second)
	handler := httpadapter.NewPaymentHandler(svc)

	e := echo.New()
	e.POST("/api/v1/payments", handler.CreatePayment)
	e.POST("/api/v1/payments/:id/confirm", handler.ConfirmPayment)
	e.GET("/api/v1/payments/:id", handler.GetPayment)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createPayment(t *testing.T, e *echo.Echo, body string) map[string]any {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/v1/payments", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreatePayment_ReturnsCreated(t *testing.T) {
	e := newServer(&stubGateway{})

	resp := createPayment(t, e, `{"amount": 100.00, "currency": "usd"}`)

	assert.Equal(t, string(core.PaymentStatusInitiated), resp["status"])
	assert.Equal(t, 100.00, resp["amount"])
	assert.Equal(t, "USD", resp["currency"])
	assert.NotEmpty(t, resp["id"])
}

func TestCreatePayment_InvalidArguments_ReturnsBadRequest(t *testing.T) {
	e := newServer(&stubGateway{})

	rec := doJSON(t, e, http.MethodPost, "/api/v1/payments", `{"amount": -1, "currency": "USD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/payments", `{"amount": 1, "currency": "ABC"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmPayment_Captured_ReturnsOK(t *testing.T) {
	e := newServer(&stubGateway{result: output.ChargeResult{Approved: true, TransactionID: "txn_9"}})
	created := createPayment(t, e, `{"amount": 25.00, "currency": "EUR"}`)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/payments/"+created["id"].(string)+"/confirm", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(core.PaymentStatusCaptured), resp["status"])
	assert.Equal(t, "txn_9", resp["gateway_transaction_id"])
}

func TestConfirmPayment_Declined_ReturnsPaymentRequired(t *testing.T) {
	e := newServer(&stubGateway{result: output.ChargeResult{Approved: false, DeclineReason: "insufficient_funds"}})
	created := createPayment(t, e, `{"amount": 25.00, "currency": "EUR"}`)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/payments/"+created["id"].(string)+"/confirm", "")

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(core.PaymentStatusFailed), resp["status"])
	assert.Equal(t, "insufficient_funds", resp["failure_reason"])
}

func TestConfirmPayment_Unknown_ReturnsNotFound(t *testing.T) {
	e := newServer(&stubGateway{})

	rec := doJSON(t, e, http.MethodPost, "/api/v1/payments/"+uuid.NewString()+"/confirm", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmPayment_AlreadyFailed_ReturnsConflict(t *testing.T) {
	e := newServer(&stubGateway{result: output.ChargeResult{Approved: false, DeclineReason: "card_declined"}})
	created := createPayment(t, e, `{"amount": 25.00, "currency": "EUR"}`)
	id := created["id"].(string)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/payments/"+id+"/confirm", "")
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/payments/"+id+"/confirm", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPayment_ReturnsRecordOrNotFound(t *testing.T) {
	e := newServer(&stubGateway{})
	created := createPayment(t, e, `{"amount": 9.50, "currency": "GBP"}`)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/payments/"+created["id"].(string), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/payments/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/payments/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
