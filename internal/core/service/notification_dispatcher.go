package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/metrics"
	"github.com/cashflow/notification-relay/internal/port/input"
	"github.com/cashflow/notification-relay/internal/port/output"
)

// NotificationDispatcher turns broker message bodies into email sends and
// decides how each delivery is settled. It implements the
// NotificationDispatcher input port.
type NotificationDispatcher struct {
	sender output.MailSender
	logger *zap.Logger
}

// NewNotificationDispatcher creates a new notification dispatcher
func NewNotificationDispatcher(sender output.MailSender, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		sender: sender,
		logger: logger.With(zap.String("component", "dispatcher")),
	}
}

var _ input.NotificationDispatcher = (*NotificationDispatcher)(nil)

// Process validates one message and makes exactly one send attempt for it.
// Malformed or incomplete payloads and failed sends are rejected; nothing is
// retried here.
func (d *NotificationDispatcher) Process(ctx context.Context, body []byte) core.AckDecision {
	payload, err := core.DecodeNotification(body)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, core.ErrMalformedPayload) {
			reason = "malformed"
		}
		metrics.MessagesRejected.WithLabelValues(reason).Inc()
		d.logger.Warn("rejecting notification", zap.String("reason", reason), zap.Error(err))
		return core.AckDecisionReject
	}

	log := d.logger.With(zap.String("to", payload.RecipientEmail))
	log.Info("dispatching notification", zap.String("subject", payload.Subject))

	outcome := d.sender.Send(ctx, payload.RecipientEmail, payload.Subject, payload.Body)
	if !outcome.Success() {
		metrics.MessagesRejected.WithLabelValues("delivery_failed").Inc()
		log.Error("notification delivery failed", zap.Error(outcome.Err))
		return core.AckDecisionReject
	}

	log.Info("notification delivered", zap.String("message_id", outcome.MessageID))
	return core.AckDecisionAck
}
