package output

import (
	"context"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/google/uuid"
)

// PaymentRepository is an output port (secondary port) for payment data access
// Secondary adapters (database implementations) will implement this
type PaymentRepository interface {
	// Create creates a new payment
	Create(ctx context.Context, payment *core.Payment) error

	// GetByID retrieves a payment by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error)

	// Update locks the payment row, lets apply modify it and saves the result
	// in the same transaction; an error from apply aborts without writing
	Update(ctx context.Context, id uuid.UUID, apply func(*core.Payment) error) (*core.Payment, error)

	// MarkPaid atomically moves a payment from pending to paid
	// Uses SELECT FOR UPDATE to prevent concurrent settlement
	MarkPaid(ctx context.Context, id uuid.UUID) (*core.Payment, error)

	// Delete removes a payment and returns the deleted record
	Delete(ctx context.Context, id uuid.UUID) (*core.Payment, error)
}
