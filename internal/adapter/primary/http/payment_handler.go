package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/port/input"
)

// PaymentHandler is a primary adapter (HTTP handler)
type PaymentHandler struct {
	paymentService input.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService input.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePaymentRequest represents the HTTP request to create a payment
type CreatePaymentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PaymentResponse represents the HTTP response for a payment
type PaymentResponse struct {
	ID                   string  `json:"id"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
	Status               string  `json:"status"`
	GatewayTransactionID string  `json:"gateway_transaction_id,omitempty"`
	FailureReason        string  `json:"failure_reason,omitempty"`
	CreatedAt            string  `json:"created_at"`
	ProcessedAt          string  `json:"processed_at,omitempty"`
}

func toHTTPResponse(p *input.PaymentResponse) PaymentResponse {
	resp := PaymentResponse{
		ID:                   p.ID.String(),
		Amount:               p.Amount,
		Currency:             string(p.Currency),
		Status:               string(p.Status),
		GatewayTransactionID: p.GatewayTransactionID,
		FailureReason:        p.FailureReason,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
	}
	if p.ProcessedAt != nil {
		resp.ProcessedAt = p.ProcessedAt.Format(time.RFC3339)
	}
	return resp
}

// CreatePayment handles payment creation
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	response, err := h.paymentService.Initiate(c.Request().Context(), input.InitiatePaymentRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		var argErr *core.InvalidArgumentError
		if errors.As(err, &argErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": argErr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create payment",
		})
	}

	return c.JSON(http.StatusCreated, toHTTPResponse(response))
}

// ConfirmPayment drives a payment through the settlement flow
func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid payment ID",
		})
	}

	response, err := h.paymentService.Confirm(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Payment not found",
			})
		}
		var stateErr *core.StateTransitionError
		if errors.As(err, &stateErr) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": stateErr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to confirm payment",
		})
	}

	// A declined or errored charge comes back as a Failed record
	if response.Status == core.PaymentStatusFailed {
		return c.JSON(http.StatusPaymentRequired, toHTTPResponse(response))
	}

	return c.JSON(http.StatusOK, toHTTPResponse(response))
}

// GetPayment handles payment retrieval by ID
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid payment ID",
		})
	}

	response, err := h.paymentService.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Payment not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to retrieve payment",
		})
	}

	return c.JSON(http.StatusOK, toHTTPResponse(response))
}
