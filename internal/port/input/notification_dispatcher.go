package input

import (
	"context"

	"github.com/cashflow/notification-relay/internal/core"
)

// NotificationDispatcher is an input port driven by the broker consumer.
// Process handles one raw message body and decides how it is settled.
type NotificationDispatcher interface {
	Process(ctx context.Context, body []byte) core.AckDecision
}
