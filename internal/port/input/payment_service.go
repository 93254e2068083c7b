package input

import (
	"context"
	"time"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/google/uuid"
)

// PaymentService is an input port (primary port) for payment operations
// Primary adapters (HTTP handlers) will use this
type PaymentService interface {
	// CreatePayment creates a pending payment and notifies the customer
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error)

	// GetPayment retrieves a payment by ID
	GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error)

	// UpdatePayment applies a partial update and notifies the customer
	UpdatePayment(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error)

	// PayPayment settles a pending payment and sends the confirmation
	PayPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error)

	// CancelPayment deletes a payment and notifies the customer
	CancelPayment(ctx context.Context, id uuid.UUID) error
}

// CreatePaymentRequest represents the request to create a payment
type CreatePaymentRequest struct {
	AppointmentID int64
	Total         float64
	PaymentMethod string
	CustomerEmail string
}

// UpdatePaymentRequest carries the fields to change; nil fields are left untouched
type UpdatePaymentRequest struct {
	AppointmentID *int64
	Total         *float64
	PaymentMethod *string
	CustomerEmail *string
	Status        *core.PaymentStatus
}

// PaymentResponse represents the response for a payment
type PaymentResponse struct {
	ID            uuid.UUID
	AppointmentID int64
	Total         float64
	PaymentMethod string
	CustomerEmail string
	Status        core.PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
