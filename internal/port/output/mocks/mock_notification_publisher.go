package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cashflow/notification-relay/internal/core"
)

// MockNotificationPublisher is a mock implementation of output.NotificationPublisher.
type MockNotificationPublisher struct {
	mock.Mock
}

//nolint:revive
func (m *MockNotificationPublisher) PublishNotification(ctx context.Context, n core.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

//nolint:revive
func (m *MockNotificationPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
