package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/cashflow/notification-relay/internal/config"
	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/metrics"
)

// transport is the subset of *gomail.Client the sender uses.
type transport interface {
	DialWithContext(ctx context.Context) error
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
	Close() error
}

// SMTPSender delivers notifications over SMTP. It owns its transport handle
// exclusively; a sender whose initialization failed stays "not ready" and
// fails every send without touching the network.
type SMTPSender struct {
	cfg       config.MailConfig
	logger    *zap.Logger
	transport transport
}

// NewSMTPSender creates a sender and initializes its transport. Initialization
// failures are logged, never returned.
func NewSMTPSender(cfg config.MailConfig, logger *zap.Logger) *SMTPSender {
	s := &SMTPSender{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "mail"), zap.String("host", cfg.Host)),
	}
	s.Initialize()
	return s
}

// Initialize (re)builds the SMTP client from the configuration.
func (s *SMTPSender) Initialize() {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
	}
	if s.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.User),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		s.transport = nil
		s.logger.Error("failed to initialize mail transport", zap.Error(err))
		return
	}
	s.transport = client
	s.logger.Info("mail transport initialized", zap.Int("port", s.cfg.Port), zap.Bool("secure", s.cfg.Secure))
}

// Ready reports whether the transport was initialized.
func (s *SMTPSender) Ready() bool {
	return s.transport != nil
}

// Send renders and delivers one notification.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) core.DeliveryOutcome {
	if s.transport == nil {
		metrics.MailSendFailure.WithLabelValues(s.cfg.Host).Inc()
		return core.DeliveryFailed(core.ErrMailerNotReady)
	}

	msg, err := s.buildMessage(to, subject, body)
	if err != nil {
		metrics.MailSendFailure.WithLabelValues(s.cfg.Host).Inc()
		s.logger.Error("failed to build email", zap.String("to", to), zap.Error(err))
		return core.DeliveryFailed(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.transport.DialAndSendWithContext(ctx, msg); err != nil {
		metrics.MailSendFailure.WithLabelValues(s.cfg.Host).Inc()
		s.logger.Error("failed to send email", zap.String("to", to), zap.Error(err))
		return core.DeliveryFailed(fmt.Errorf("sending email to %s: %w", to, err))
	}

	messageID := msg.GetMessageID()
	metrics.MailSendSuccess.WithLabelValues(s.cfg.Host).Inc()
	s.logger.Info("email sent", zap.String("to", to), zap.String("message_id", messageID))
	return core.Delivered(messageID)
}

// VerifyConnectivity dials the server (EHLO, STARTTLS and AUTH as configured)
// and hangs up.
func (s *SMTPSender) VerifyConnectivity(ctx context.Context) bool {
	if s.transport == nil {
		s.logger.Warn("mail transport unavailable, skipping verification")
		return false
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.transport.DialWithContext(ctx); err != nil {
		s.logger.Warn("mail server verification failed", zap.Error(err))
		return false
	}
	if err := s.transport.Close(); err != nil {
		s.logger.Debug("closing verification connection", zap.Error(err))
	}
	s.logger.Info("mail server connection verified")
	return true
}

func (s *SMTPSender) buildMessage(to, subject, body string) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetMessageID()
	m.SetDate()

	// Plain-text fallback for clients that don't render HTML.
	m.SetBodyString(gomail.TypeTextPlain, body)

	html, err := renderEmailHTML(subject, body)
	if err != nil {
		return nil, fmt.Errorf("rendering email template: %w", err)
	}
	m.AddAlternativeString(gomail.TypeTextHTML, html)
	return m, nil
}

func (s *SMTPSender) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
