package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cashflow/notification-relay/internal/core"
)

// MockPaymentRepository is a mock implementation of output.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

//nolint:revive
func (m *MockPaymentRepository) Create(ctx context.Context, payment *core.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

//nolint:revive
func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Payment), args.Error(1)
}

// Update applies apply to a copy of the payment returned by the expectation.
func (m *MockPaymentRepository) Update(ctx context.Context, id uuid.UUID, apply func(*core.Payment) error) (*core.Payment, error) {
	args := m.Called(ctx, id, apply)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	current := *args.Get(0).(*core.Payment)
	if err := apply(&current); err != nil {
		return nil, err
	}
	return &current, nil
}

//nolint:revive
func (m *MockPaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Payment), args.Error(1)
}

//nolint:revive
func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Payment), args.Error(1)
}
