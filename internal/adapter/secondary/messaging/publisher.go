package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/port/output"
)

// PublisherConfig describes where notifications are published.
type PublisherConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// RabbitMQPublisher is a secondary adapter that implements the NotificationPublisher output port.
// A connection or channel lost since the last publish is re-dialed on the next one.
type RabbitMQPublisher struct {
	cfg    PublisherConfig
	logger *zap.Logger
	dial   Dialer

	mu         sync.Mutex
	conn       Connection
	channel    Channel
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
	closed     bool
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the notification exchange
func NewRabbitMQPublisher(cfg PublisherConfig, logger *zap.Logger) (output.NotificationPublisher, error) {
	return newRabbitMQPublisher(cfg, DialAMQP, logger)
}

func newRabbitMQPublisher(cfg PublisherConfig, dial Dialer, logger *zap.Logger) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "publisher")),
		dial:   dial,
	}
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

// connectLocked dials, opens a channel and declares the exchange. p.mu must be held.
func (p *RabbitMQPublisher) connectLocked() error {
	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(channel, p.cfg.Exchange); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = channel
	p.connClosed = conn.NotifyClose(make(chan *amqp.Error, 1))
	p.chanClosed = channel.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// liveLocked reports whether the current channel is still usable. p.mu must be held.
func (p *RabbitMQPublisher) liveLocked() bool {
	if p.channel == nil {
		return false
	}
	select {
	case <-p.connClosed:
		return false
	case <-p.chanClosed:
		return false
	default:
		return true
	}
}

// releaseLocked closes channel then connection, ignoring errors from handles
// that are already gone. p.mu must be held.
func (p *RabbitMQPublisher) releaseLocked() (chErr, connErr error) {
	if p.channel != nil {
		chErr = p.channel.Close()
	}
	if p.conn != nil {
		connErr = p.conn.Close()
	}
	p.channel, p.conn = nil, nil
	p.connClosed, p.chanClosed = nil, nil
	return chErr, connErr
}

// PublishNotification publishes a persistent JSON notification
func (p *RabbitMQPublisher) PublishNotification(ctx context.Context, n core.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}

	messageID := uuid.NewString()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // Make message persistent
		MessageId:    messageID,
		Body:         body,
		Timestamp:    time.Now(),
	}

	// One retry on a fresh connection when the broker closed the old one.
	for attempt := 0; ; attempt++ {
		if !p.liveLocked() {
			p.releaseLocked()
			if err := p.connectLocked(); err != nil {
				return fmt.Errorf("failed to reconnect publisher: %w", err)
			}
			p.logger.Info("publisher reconnected")
		}

		err = p.channel.PublishWithContext(ctx,
			p.cfg.Exchange,
			p.cfg.RoutingKey,
			false, // mandatory
			false, // immediate
			msg,
		)
		if err == nil {
			break
		}
		if !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return fmt.Errorf("failed to publish notification: %w", err)
		}
		p.releaseLocked()
	}

	p.logger.Info("published notification",
		zap.String("message_id", messageID),
		zap.String("routing_key", p.cfg.RoutingKey),
		zap.String("to", n.Email),
	)
	return nil
}

// Close closes the channel and then the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	chErr, connErr := p.releaseLocked()
	if chErr != nil && !errors.Is(chErr, amqp.ErrClosed) {
		return fmt.Errorf("failed to close channel: %w", chErr)
	}
	if errors.Is(connErr, amqp.ErrClosed) {
		return nil
	}
	return connErr
}
