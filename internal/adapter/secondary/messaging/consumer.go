package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/metrics"
	"github.com/cashflow/notification-relay/internal/port/input"
)

const defaultPrefetch = 1 // Process one message at a time per worker

// ConsumerConfig describes the broker endpoint and topology.
type ConsumerConfig struct {
	URL      string
	Exchange string
	// Topic is the binding pattern of the exclusive queue.
	Topic       string
	ConsumerTag string
	Prefetch    int
	// MaxReconnectAttempts caps consecutive failed reconnects; zero retries forever.
	MaxReconnectAttempts int
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithDialer replaces the AMQP dialer.
func WithDialer(d Dialer) ConsumerOption {
	return func(c *Consumer) {
		c.dial = d
	}
}

// WithReconnectPolicy sets the delay between reconnect attempts.
func WithReconnectPolicy(p ReconnectPolicy) ConsumerOption {
	return func(c *Consumer) {
		c.reconnectDelay = p
	}
}

// Consumer binds an exclusive queue to a topic exchange and feeds every
// delivery to the dispatcher, one at a time, with explicit ack/reject.
// It owns the broker connection and channel and is the only writer of the
// shared ConnectionState.
type Consumer struct {
	cfg            ConsumerConfig
	dispatcher     input.NotificationDispatcher
	state          *core.ConnectionState
	logger         *zap.Logger
	dial           Dialer
	reconnectDelay ReconnectPolicy

	mu      sync.Mutex
	conn    Connection
	channel Channel
	running bool
	closed  bool
	stopped chan struct{}
	done    chan struct{}
}

// session holds the notification channels of one live connection.
type session struct {
	deliveries <-chan amqp.Delivery
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
}

// NewConsumer creates a consumer. Nothing is dialed until Run.
func NewConsumer(
	cfg ConsumerConfig,
	dispatcher input.NotificationDispatcher,
	state *core.ConnectionState,
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer {
	if dispatcher == nil {
		panic("messaging: nil NotificationDispatcher")
	}
	if state == nil {
		panic("messaging: nil ConnectionState")
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}

	c := &Consumer{
		cfg:            cfg,
		dispatcher:     dispatcher,
		state:          state,
		logger:         logger.With(zap.String("component", "consumer")),
		dial:           DialAMQP,
		reconnectDelay: FixedDelay(DefaultReconnectDelay),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects, sets up the topology and consumes until ctx is cancelled or
// Close is called. Every connection loss or failed attempt schedules exactly
// one reconnect after the policy delay; the loop runs on this goroutine, so
// reconnect attempts never overlap.
func (c *Consumer) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConsumerClosed
	}
	if c.running {
		c.mu.Unlock()
		return ErrConsumerRunning
	}
	c.running = true
	c.stopped = make(chan struct{})
	stopped := c.stopped
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(stopped)
	}()

	attempt := 0
	for {
		s, err := c.connect()
		if err == nil {
			attempt = 0
			err = c.consume(ctx, s)
		}
		c.state.SetDisconnected()
		metrics.BrokerConnected.Set(0)
		c.release()

		if c.stopping(ctx) {
			return nil
		}

		attempt++
		if c.cfg.MaxReconnectAttempts > 0 && attempt > c.cfg.MaxReconnectAttempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrReconnectExhausted, attempt-1, err)
		}

		delay := c.reconnectDelay(attempt)
		metrics.BrokerReconnects.Inc()
		c.logger.Warn("broker unavailable, reconnect scheduled",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		if !c.sleep(ctx, delay) {
			return nil
		}
	}
}

// connect dials the broker, opens a channel, declares the exchange and the
// exclusive queue, binds it and starts consuming with manual acks.
func (c *Consumer) connect() (*session, error) {
	c.state.SetPhase(core.PhaseConnecting)
	c.logger.Info("connecting to broker", zap.String("exchange", c.cfg.Exchange), zap.String("topic", c.cfg.Topic))

	conn, err := c.dial(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	if !c.adopt(conn, nil) {
		_ = conn.Close()
		return nil, ErrConsumerClosed
	}
	c.state.SetConnected(true)
	metrics.BrokerConnected.Set(1)

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if !c.adopt(conn, ch) {
		_ = ch.Close()
		return nil, ErrConsumerClosed
	}
	c.state.SetChannelOpen(true)

	s := &session{
		connClosed: conn.NotifyClose(make(chan *amqp.Error, 1)),
		chanClosed: ch.NotifyClose(make(chan *amqp.Error, 1)),
	}

	if err := declareExchange(ch, c.cfg.Exchange); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Server-named queue that lives only as long as this connection.
	q, err := ch.QueueDeclare(
		"",
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, c.cfg.Topic, c.cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}
	c.state.SetPhase(core.PhaseTopologyReady)

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	s.deliveries, err = ch.Consume(
		q.Name,
		c.cfg.ConsumerTag,
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	c.state.SetPhase(core.PhaseConsuming)

	c.logger.Info("consuming notifications", zap.String("queue", q.Name), zap.String("topic", c.cfg.Topic))
	return s, nil
}

// consume drains deliveries until the session ends. It always returns a
// non-nil error describing why.
func (c *Consumer) consume(ctx context.Context, s *session) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrConsumerClosed
		case amqpErr, ok := <-s.connClosed:
			return closedError("connection", amqpErr, ok)
		case amqpErr, ok := <-s.chanClosed:
			return closedError("channel", amqpErr, ok)
		case d, ok := <-s.deliveries:
			if !ok {
				return fmt.Errorf("%w: delivery stream closed", ErrConnectionLost)
			}
			if c.stopping(ctx) {
				// Left unacked; the broker drops it with the exclusive queue.
				return ErrConsumerClosed
			}
			c.handle(ctx, d)
		}
	}
}

// handle dispatches one delivery and settles it. The dispatcher gets a
// context that is not cancelled by shutdown, so an in-flight send completes.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	metrics.MessagesReceived.Inc()
	log := c.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag), zap.String("routing_key", d.RoutingKey))
	log.Debug("message received", zap.ByteString("body", d.Body))

	decision := c.dispatcher.Process(context.WithoutCancel(ctx), d.Body)

	switch decision {
	case core.AckDecisionAck:
		if err := d.Ack(false); err != nil {
			log.Error("failed to ack message", zap.Error(err))
			return
		}
		metrics.MessagesAcked.Inc()
	default:
		// Never requeue: a poison message would otherwise loop forever.
		if err := d.Reject(false); err != nil {
			log.Error("failed to reject message", zap.Error(err))
			return
		}
	}
	log.Debug("message settled", zap.Stringer("decision", decision))
}

// Close stops consumption, waits for the message in flight, then closes the
// channel and the connection. It is safe to call more than once.
func (c *Consumer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	stopped := c.stopped
	running := c.running
	c.mu.Unlock()

	if running {
		<-stopped
	}
	c.release()
	c.state.SetDisconnected()
	metrics.BrokerConnected.Set(0)
	c.logger.Info("broker consumer closed")
}

// adopt records the live handles unless Close has started.
func (c *Consumer) adopt(conn Connection, ch Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conn = conn
	c.channel = ch
	return true
}

// release closes channel then connection; a failure on one does not skip the other.
func (c *Consumer) release() {
	c.mu.Lock()
	ch, conn := c.channel, c.conn
	c.channel, c.conn = nil, nil
	c.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Warn("failed to close channel", zap.Error(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Warn("failed to close connection", zap.Error(err))
		}
	}
}

func (c *Consumer) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// sleep waits d and reports false if the consumer was stopped meanwhile.
func (c *Consumer) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return !c.stopping(ctx)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	case <-timer.C:
		return true
	}
}

func closedError(what string, amqpErr *amqp.Error, ok bool) error {
	if !ok || amqpErr == nil {
		return fmt.Errorf("%w: %s closed", ErrConnectionLost, what)
	}
	return fmt.Errorf("%w: %s closed: %v", ErrConnectionLost, what, amqpErr)
}
