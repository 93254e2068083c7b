package output

import (
	"context"

	"github.com/cashflow/notification-relay/internal/core"
)

// NotificationPublisher is an output port (secondary port) for notification messaging
// Secondary adapters (RabbitMQ implementations) will implement this
type NotificationPublisher interface {
	// PublishNotification publishes a notification onto the broker
	PublishNotification(ctx context.Context, n core.Notification) error
	// Close closes the messaging connection
	Close() error
}
