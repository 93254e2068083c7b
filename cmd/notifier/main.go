package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "github.com/cashflow/notification-relay/internal/adapter/primary/http"
	"github.com/cashflow/notification-relay/internal/adapter/secondary/mail"
	"github.com/cashflow/notification-relay/internal/adapter/secondary/messaging"
	"github.com/cashflow/notification-relay/internal/config"
	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/core/service"
	"github.com/cashflow/notification-relay/internal/logger"
)

const (
	verifyTimeout   = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.LoadNotifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "notifier: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notifier: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("notifier stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("notifier stopped")
}

func run(ctx context.Context, cfg *config.NotifierConfig, log *zap.Logger) error {
	state := core.NewConnectionState()

	// Secondary adapter: mail transport (implements MailSender output port)
	sender := mail.NewSMTPSender(cfg.Mail, log)

	// Core service: dispatcher (implements NotificationDispatcher input port)
	dispatcher := service.NewNotificationDispatcher(sender, log)

	consumer := messaging.NewConsumer(messaging.ConsumerConfig{
		URL:                  cfg.RabbitMQ.URL,
		Exchange:             cfg.RabbitMQ.Exchange,
		Topic:                cfg.RabbitMQ.Topic,
		ConsumerTag:          "notifier",
		Prefetch:             cfg.RabbitMQ.Prefetch,
		MaxReconnectAttempts: cfg.RabbitMQ.ReconnectMaxAttempts,
	}, dispatcher, state, log,
		messaging.WithReconnectPolicy(messaging.FixedDelay(cfg.RabbitMQ.ReconnectDelay)),
	)

	verifyCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	if sender.VerifyConnectivity(verifyCtx) {
		log.Info("mail server reachable")
	} else {
		log.Warn("mail server not reachable, sends will be attempted anyway")
	}
	cancel()

	// Primary adapter: diagnostics server
	e := httpadapter.NewServer(log)
	httpadapter.NewHealthHandler(state).Register(e)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting diagnostics server", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("diagnostics server: %w", err)
		}
	}()

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-consumerErr:
		runErr = err
	case err := <-serverErr:
		runErr = err
	}

	consumer.Close()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("failed to shut down diagnostics server", zap.Error(err))
	}

	return runErr
}
