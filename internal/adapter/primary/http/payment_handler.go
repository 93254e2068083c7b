package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/port/input"
)

// PaymentHandler is a primary adapter (HTTP handler)
type PaymentHandler struct {
	paymentService input.PaymentService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService input.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Register mounts the payment routes on g
func (h *PaymentHandler) Register(g *echo.Group) {
	g.POST("/payments", h.CreatePayment)
	g.GET("/payments/:id", h.GetPayment)
	g.PUT("/payments/:id", h.UpdatePayment)
	g.DELETE("/payments/:id", h.CancelPayment)
	g.POST("/payments/:id/pay", h.PayPayment)
}

// CreatePaymentRequest represents the HTTP request to create a payment
type CreatePaymentRequest struct {
	AppointmentID int64   `json:"appointment_id"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"payment_method"`
	CustomerEmail string  `json:"customer_email"`
}

// UpdatePaymentRequest represents a partial update; absent fields are kept
type UpdatePaymentRequest struct {
	AppointmentID *int64   `json:"appointment_id"`
	Total         *float64 `json:"total"`
	PaymentMethod *string  `json:"payment_method"`
	CustomerEmail *string  `json:"customer_email"`
	Status        *string  `json:"status"`
}

// PaymentResponse represents the HTTP response for a payment
type PaymentResponse struct {
	ID            string  `json:"id"`
	AppointmentID int64   `json:"appointment_id"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"payment_method"`
	CustomerEmail string  `json:"customer_email"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// CreatePayment handles payment creation
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	response, err := h.paymentService.CreatePayment(c.Request().Context(), input.CreatePaymentRequest{
		AppointmentID: req.AppointmentID,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return h.fail(c, err, "Failed to create payment")
	}

	return c.JSON(http.StatusCreated, toHTTP(response))
}

// GetPayment handles payment retrieval by ID
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return invalidID(c)
	}

	response, err := h.paymentService.GetPayment(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to retrieve payment")
	}

	return c.JSON(http.StatusOK, toHTTP(response))
}

// UpdatePayment handles partial payment updates
func (h *PaymentHandler) UpdatePayment(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return invalidID(c)
	}

	var req UpdatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	serviceReq := input.UpdatePaymentRequest{
		AppointmentID: req.AppointmentID,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		CustomerEmail: req.CustomerEmail,
	}
	if req.Status != nil {
		status := core.PaymentStatus(*req.Status)
		serviceReq.Status = &status
	}

	response, err := h.paymentService.UpdatePayment(c.Request().Context(), id, serviceReq)
	if err != nil {
		return h.fail(c, err, "Failed to update payment")
	}

	return c.JSON(http.StatusOK, toHTTP(response))
}

// PayPayment confirms a pending payment
func (h *PaymentHandler) PayPayment(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return invalidID(c)
	}

	response, err := h.paymentService.PayPayment(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to pay payment")
	}

	return c.JSON(http.StatusOK, toHTTP(response))
}

// CancelPayment deletes a payment
func (h *PaymentHandler) CancelPayment(c echo.Context) error {
	id, ok := paymentID(c)
	if !ok {
		return invalidID(c)
	}

	if err := h.paymentService.CancelPayment(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to cancel payment")
	}

	return c.NoContent(http.StatusNoContent)
}

// fail maps service errors to status codes; unknown errors are logged and hidden
func (h *PaymentHandler) fail(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, core.ErrInvalidPayment):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, core.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Payment not found"})
	case errors.Is(err, core.ErrPaymentAlreadyPaid):
		return c.JSON(http.StatusConflict, map[string]string{"error": "Payment already paid"})
	}

	h.logger.Error(fallback,
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": fallback})
}

func paymentID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{
		"error": "Invalid payment ID",
	})
}

func toHTTP(r *input.PaymentResponse) PaymentResponse {
	return PaymentResponse{
		ID:            r.ID.String(),
		AppointmentID: r.AppointmentID,
		Total:         r.Total,
		PaymentMethod: r.PaymentMethod,
		CustomerEmail: r.CustomerEmail,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}
