package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var (
	ErrCircuitOpen  = errors.New("circuit breaker is open")
	ErrNotConnected = errors.New("not connected to AMQP broker")
)

// Client publishes activity events to a topic exchange. Publish never dials:
// when there is no live channel it starts a background reconnect and fails
// fast, and the circuit breaker spaces out reconnects after repeated
// failures.
type Client struct {
	url           string
	exchangeName  string
	routingPrefix string
	logger        *slog.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool
	dialing int32

	failureCount int64
	state        int32
	lastFailure  time.Time
	failMu       sync.Mutex
}

func NewClient(url, exchangeName, routingPrefix string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:           url,
		exchangeName:  exchangeName,
		routingPrefix: routingPrefix,
		logger:        logger,
	}
}

// Connect dials the broker and declares the exchange. Callers may use it at
// startup to fail fast; Publish reconnects on its own.
func (c *Client) Connect(ctx context.Context) error {
	conn, channel, err := c.dial()
	if err != nil {
		return err
	}
	c.install(ctx, conn, channel)
	return nil
}

// dial runs without c.mu held.
func (c *Client) dial() (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Dial: amqp091.DefaultDial(publishTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, channel, nil
}

// install swaps in a freshly dialed channel unless the client was closed or
// a live channel is already in place.
func (c *Client) install(ctx context.Context, conn *amqp091.Connection, channel *amqp091.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || (c.channel != nil && !c.channel.IsClosed()) {
		channel.Close()
		conn.Close()
		return
	}
	c.resetLocked()
	c.conn = conn
	c.channel = channel
	c.logger.InfoContext(ctx, "Connected to AMQP broker", "exchange", c.exchangeName)
}

// reconnect starts at most one background dial.
func (c *Client) reconnect() {
	if !atomic.CompareAndSwapInt32(&c.dialing, 0, 1) {
		return
	}
	go func() {
		defer atomic.StoreInt32(&c.dialing, 0)
		conn, channel, err := c.dial()
		if err != nil {
			c.recordFailure()
			c.logger.Warn("AMQP reconnect failed", "error", err)
			return
		}
		c.install(context.Background(), conn, channel)
		c.recordSuccess()
	}()
}

func (c *Client) resetLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// liveChannel returns the current channel, or nil when there is none.
func (c *Client) liveChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || c.channel.IsClosed() {
		return nil
	}
	return c.channel
}

// RoutingKey returns the key an event is published under, e.g.
// "spendwise.transaction.recorded".
func (c *Client) RoutingKey(event string) string {
	if c.routingPrefix == "" {
		return event
	}
	return c.routingPrefix + "." + event
}

// Publish sends one activity message.
func (c *Client) Publish(ctx context.Context, msg *ActivityMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msg.Event, ErrCircuitOpen)
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	channel := c.liveChannel()
	if channel == nil {
		c.reconnect()
		return fmt.Errorf("publish %s: %w", msg.Event, ErrNotConnected)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName,          // exchange
		c.RoutingKey(msg.Event), // routing key
		false,                   // mandatory
		false,                   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			MessageId:    msg.ID,
			Type:         msg.Event,
			Body:         body,
		},
	)
	if err != nil {
		if isConnectionError(err) {
			c.mu.Lock()
			if c.channel == channel {
				c.resetLocked()
			}
			c.mu.Unlock()
		}
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published activity message",
		"event", msg.Event,
		"message_id", msg.ID,
		"exchange", c.exchangeName)
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.failMu.Lock()
	last := c.lastFailure
	c.failMu.Unlock()

	window := exponentialBackoff(int(atomic.LoadInt64(&c.failureCount)) - maxFailures)
	if time.Since(last) > window {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.failMu.Lock()
	c.lastFailure = time.Now()
	c.failMu.Unlock()

	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.logger.Warn("AMQP circuit breaker opened", "failures", n)
		}
	}
}

// exponentialBackoff doubles from one second and caps at openTimeout.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return openTimeout
	}
	d := time.Second << attempt
	if d > openTimeout {
		return openTimeout
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "dial"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}
