package output

import (
	"context"

	"github.com/cashflow/notification-relay/internal/core"
)

// MailSender is an output port (secondary port) for email delivery
// Implementations never return errors past their boundary; failures are
// reported through the outcome.
type MailSender interface {
	// Send delivers one formatted notification to a recipient
	Send(ctx context.Context, to, subject, body string) core.DeliveryOutcome

	// VerifyConnectivity performs a lightweight handshake with the transport
	VerifyConnectivity(ctx context.Context) bool
}
