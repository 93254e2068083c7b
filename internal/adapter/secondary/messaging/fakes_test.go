package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cashflow/notification-relay/internal/core"
)

// fakeBroker hands out fake connections and keeps an ordered event log
// shared by every connection, channel and delivery it creates.
type fakeBroker struct {
	mu       sync.Mutex
	dials    int
	dialErrs []error
	conns    []*fakeConnection
	events   []string
	chanErr  error
	closeErr error
}

func (b *fakeBroker) dial(string) (Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dials++
	if len(b.dialErrs) > 0 {
		err := b.dialErrs[0]
		b.dialErrs = b.dialErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	conn := &fakeConnection{broker: b, id: len(b.conns) + 1}
	conn.channel = &fakeChannel{
		broker:     b,
		conn:       conn,
		deliveries: make(chan amqp.Delivery, 16),
		closeErr:   b.closeErr,
	}
	b.conns = append(b.conns, conn)
	return conn, nil
}

func (b *fakeBroker) record(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, fmt.Sprintf(format, args...))
}

func (b *fakeBroker) Dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *fakeBroker) Conn(i int) *fakeConnection {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= len(b.conns) {
		return nil
	}
	return b.conns[i]
}

func (b *fakeBroker) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	copy(out, b.events)
	return out
}

type fakeConnection struct {
	broker  *fakeBroker
	id      int
	channel *fakeChannel

	mu       sync.Mutex
	notify   []chan *amqp.Error
	finished bool
	closes   int
}

func (c *fakeConnection) Channel() (Channel, error) {
	if c.broker.chanErr != nil {
		return nil, c.broker.chanErr
	}
	return c.channel, nil
}

func (c *fakeConnection) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		close(receiver)
		return receiver
	}
	c.notify = append(c.notify, receiver)
	return receiver
}

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	c.closes++
	c.finishLocked(nil)
	c.mu.Unlock()
	c.broker.record("conn%d.close", c.id)
	return nil
}

// drop simulates an unsolicited close initiated by the broker.
func (c *fakeConnection) drop(reason *amqp.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLocked(reason)
}

func (c *fakeConnection) finishLocked(reason *amqp.Error) {
	if c.finished {
		return
	}
	c.finished = true
	for _, n := range c.notify {
		if reason != nil {
			n <- reason
		}
		close(n)
	}
}

func (c *fakeConnection) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

type exchangeDecl struct {
	name, kind string
	durable    bool
}

type queueDecl struct {
	name               string
	durable, exclusive bool
	autoDelete         bool
}

type bindingDecl struct {
	queue, key, exchange string
}

type fakeChannel struct {
	broker     *fakeBroker
	conn       *fakeConnection
	deliveries chan amqp.Delivery
	closeErr   error

	mu        sync.Mutex
	exchanges []exchangeDecl
	queues    []queueDecl
	bindings  []bindingDecl
	prefetch  int
	autoAck   bool
	published []publishCall
	notify    []chan *amqp.Error
	finished  bool
	closes    int
	nextTag   uint64
	queueSeq  int
}

type publishCall struct {
	exchange, key string
	msg           amqp.Publishing
}

func (ch *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.exchanges = append(ch.exchanges, exchangeDecl{name: name, kind: kind, durable: durable})
	return nil
}

func (ch *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, _ bool, _ amqp.Table) (amqp.Queue, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.queues = append(ch.queues, queueDecl{name: name, durable: durable, autoDelete: autoDelete, exclusive: exclusive})
	ch.queueSeq++
	if name == "" {
		name = fmt.Sprintf("amq.gen-%d-%d", ch.conn.id, ch.queueSeq)
	}
	return amqp.Queue{Name: name}, nil
}

func (ch *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.bindings = append(ch.bindings, bindingDecl{queue: name, key: key, exchange: exchange})
	return nil
}

func (ch *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.prefetch = prefetchCount
	return nil
}

func (ch *fakeChannel) Consume(_, _ string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.autoAck = autoAck
	return ch.deliveries, nil
}

func (ch *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.finished {
		return amqp.ErrClosed
	}
	ch.published = append(ch.published, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (ch *fakeChannel) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.finished {
		close(receiver)
		return receiver
	}
	ch.notify = append(ch.notify, receiver)
	return receiver
}

func (ch *fakeChannel) Close() error {
	ch.mu.Lock()
	ch.closes++
	if !ch.finished {
		ch.finished = true
		for _, n := range ch.notify {
			close(n)
		}
	}
	ch.mu.Unlock()
	ch.broker.record("conn%d.channel.close", ch.conn.id)
	return ch.closeErr
}

func (ch *fakeChannel) Closes() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closes
}

// deliver enqueues a message on the consumer's delivery stream.
func (ch *fakeChannel) deliver(body string) uint64 {
	ch.mu.Lock()
	ch.nextTag++
	tag := ch.nextTag
	ch.mu.Unlock()

	ch.deliveries <- amqp.Delivery{
		Acknowledger: ch,
		DeliveryTag:  tag,
		RoutingKey:   "sd/notificacoes",
		Body:         []byte(body),
	}
	return tag
}

// Ack implements amqp.Acknowledger.
func (ch *fakeChannel) Ack(tag uint64, _ bool) error {
	ch.broker.record("ack:%d", tag)
	return nil
}

// Nack implements amqp.Acknowledger.
func (ch *fakeChannel) Nack(tag uint64, _ bool, requeue bool) error {
	return ch.Reject(tag, requeue)
}

// Reject implements amqp.Acknowledger. A requeued message is redelivered,
// like a broker would.
func (ch *fakeChannel) Reject(tag uint64, requeue bool) error {
	ch.broker.record("reject:%d:requeue=%t", tag, requeue)
	if requeue {
		go func() {
			ch.deliveries <- amqp.Delivery{Acknowledger: ch, DeliveryTag: tag, Redelivered: true}
		}()
	}
	return nil
}

// recordingDispatcher records every body it sees and answers with decide.
type recordingDispatcher struct {
	mu     sync.Mutex
	bodies []string
	decide func(body string) core.AckDecision
}

func (d *recordingDispatcher) Process(_ context.Context, body []byte) core.AckDecision {
	d.mu.Lock()
	d.bodies = append(d.bodies, string(body))
	decide := d.decide
	d.mu.Unlock()
	if decide == nil {
		return core.AckDecisionAck
	}
	return decide(string(body))
}

func (d *recordingDispatcher) Bodies() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.bodies))
	copy(out, d.bodies)
	return out
}

// recordingPolicy is a ReconnectPolicy that remembers the attempts it was asked about.
type recordingPolicy struct {
	mu       sync.Mutex
	delay    time.Duration
	attempts []int
}

func (p *recordingPolicy) next(attempt int) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts = append(p.attempts, attempt)
	return p.delay
}

func (p *recordingPolicy) Attempts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.attempts))
	copy(out, p.attempts)
	return out
}

var errDialRefused = errors.New("dial tcp 127.0.0.1:5672: connect: connection refused")
