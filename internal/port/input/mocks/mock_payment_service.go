package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cashflow/notification-relay/internal/port/input"
)

// MockPaymentService is a mock implementation of input.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func response(args mock.Arguments) *input.PaymentResponse {
	if r := args.Get(0); r != nil {
		return r.(*input.PaymentResponse)
	}
	return nil
}

//nolint:revive
func (m *MockPaymentService) CreatePayment(ctx context.Context, req input.CreatePaymentRequest) (*input.PaymentResponse, error) {
	args := m.Called(ctx, req)
	return response(args), args.Error(1)
}

//nolint:revive
func (m *MockPaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	args := m.Called(ctx, id)
	return response(args), args.Error(1)
}

//nolint:revive
func (m *MockPaymentService) UpdatePayment(ctx context.Context, id uuid.UUID, req input.UpdatePaymentRequest) (*input.PaymentResponse, error) {
	args := m.Called(ctx, id, req)
	return response(args), args.Error(1)
}

//nolint:revive
func (m *MockPaymentService) PayPayment(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	args := m.Called(ctx, id)
	return response(args), args.Error(1)
}

//nolint:revive
func (m *MockPaymentService) CancelPayment(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
