package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cashflow/notification-relay/internal/core"
)

// MockMailSender is a mock implementation of output.MailSender.
type MockMailSender struct {
	mock.Mock
}

//nolint:revive
func (m *MockMailSender) Send(ctx context.Context, to, subject, body string) core.DeliveryOutcome {
	args := m.Called(ctx, to, subject, body)
	return args.Get(0).(core.DeliveryOutcome)
}

//nolint:revive
func (m *MockMailSender) VerifyConnectivity(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}
