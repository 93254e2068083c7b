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

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	httpadapter "github.com/cashflow/notification-relay/internal/adapter/primary/http"
	"github.com/cashflow/notification-relay/internal/adapter/secondary/database"
	"github.com/cashflow/notification-relay/internal/adapter/secondary/messaging"
	"github.com/cashflow/notification-relay/internal/config"
	"github.com/cashflow/notification-relay/internal/constant/model/db"
	"github.com/cashflow/notification-relay/internal/core/service"
	"github.com/cashflow/notification-relay/internal/logger"
	"github.com/cashflow/notification-relay/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.APIConfig, log *zap.Logger) error {
	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(ctx, cfg.DatabaseURL, db.DefaultPoolConfig, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	// Initialize secondary adapters: Repository and Messaging (implement output ports)
	paymentRepo := database.NewGormPaymentRepository(dbConn.DB)
	publisher, err := messaging.NewRabbitMQPublisher(messaging.PublisherConfig{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.Topic,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer publisher.Close()

	// Initialize core service (implements input port)
	paymentService := service.NewPaymentService(paymentRepo, publisher, log)

	// Initialize primary adapter: HTTP handler (uses input port)
	e := httpadapter.NewServer(log)
	httpadapter.NewPaymentHandler(paymentService, log).Register(e.Group("/api/v1"))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting API server", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
