package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/metrics"
	"github.com/cashflow/notification-relay/internal/port/input"
	"github.com/cashflow/notification-relay/internal/port/output"
)

// Payment events, used as metric labels and to pick the notification text.
const (
	eventCreated   = "created"
	eventUpdated   = "updated"
	eventPaid      = "paid"
	eventCancelled = "cancelled"
)

// PaymentServiceImpl implements the PaymentService input port
type PaymentServiceImpl struct {
	paymentRepo output.PaymentRepository
	publisher   output.NotificationPublisher
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo output.PaymentRepository,
	publisher output.NotificationPublisher,
	logger *zap.Logger,
) input.PaymentService {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		logger:      logger.With(zap.String("component", "payments")),
	}
}

// CreatePayment creates a new payment
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req input.CreatePaymentRequest) (*input.PaymentResponse, error) {
	payment := &core.Payment{
		ID:            uuid.New(),
		AppointmentID: req.AppointmentID,
		Total:         req.Total,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Status:        core.PaymentStatusPending,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.notify(ctx, eventCreated, payment)
	return toResponse(payment), nil
}

// GetPayment retrieves a payment by ID
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toResponse(payment), nil
}

// UpdatePayment applies the non-nil fields of req
// The repository holds the row lock while the fields are applied, so a
// concurrent pay cannot be overwritten with a stale status
func (s *PaymentServiceImpl) UpdatePayment(ctx context.Context, id uuid.UUID, req input.UpdatePaymentRequest) (*input.PaymentResponse, error) {
	payment, err := s.paymentRepo.Update(ctx, id, func(p *core.Payment) error {
		if req.AppointmentID != nil {
			p.AppointmentID = *req.AppointmentID
		}
		if req.Total != nil {
			p.Total = *req.Total
		}
		if req.PaymentMethod != nil {
			p.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
		}
		if req.CustomerEmail != nil {
			p.CustomerEmail = strings.TrimSpace(*req.CustomerEmail)
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		return p.Validate()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.notify(ctx, eventUpdated, payment)
	return toResponse(payment), nil
}

// PayPayment settles a pending payment
// The repository locks the row so a payment is confirmed at most once
func (s *PaymentServiceImpl) PayPayment(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	payment, err := s.paymentRepo.MarkPaid(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to pay payment: %w", err)
	}

	s.notify(ctx, eventPaid, payment)
	return toResponse(payment), nil
}

// CancelPayment deletes a payment
func (s *PaymentServiceImpl) CancelPayment(ctx context.Context, id uuid.UUID) error {
	payment, err := s.paymentRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel payment: %w", err)
	}

	s.notify(ctx, eventCancelled, payment)
	return nil
}

// notify publishes the customer notification for a payment event.
// The payment is already persisted, so a publish failure is logged and
// counted but does not fail the request.
func (s *PaymentServiceImpl) notify(ctx context.Context, event string, p *core.Payment) {
	n := notificationFor(event, p)
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		metrics.NotificationPublishFailures.WithLabelValues(event).Inc()
		s.logger.Error("failed to publish payment notification",
			zap.String("event", event),
			zap.Stringer("payment_id", p.ID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsPublished.WithLabelValues(event).Inc()
}

func notificationFor(event string, p *core.Payment) core.Notification {
	n := core.Notification{Email: p.CustomerEmail}
	switch event {
	case eventCreated:
		n.Subject = "Pagamento em Aberto"
		n.Message = fmt.Sprintf("Seu pagamento de R$ %.2f foi criado e está pendente.", p.Total)
	case eventPaid:
		n.Subject = "Confirmação de Pagamento"
		n.Message = fmt.Sprintf("Seu pagamento de R$ %.2f foi realizado com sucesso.", p.Total)
	case eventCancelled:
		n.Subject = "Cancelamento do Pagamento"
		n.Message = "Seu pagamento foi cancelado com sucesso."
	default:
		n.Subject = "Alteração no Pagamento"
		n.Message = "Houve uma alteração no seu pagamento."
	}
	return n
}

func toResponse(p *core.Payment) *input.PaymentResponse {
	return &input.PaymentResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		Total:         p.Total,
		PaymentMethod: p.PaymentMethod,
		CustomerEmail: p.CustomerEmail,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
