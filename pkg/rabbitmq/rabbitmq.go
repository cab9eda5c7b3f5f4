package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"

	"socialapp/internal/logger"
)

// DefaultQueue carries outbound notifications to the worker.
const DefaultQueue = "notifications"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	backoff Backoff
	log     *logger.Logger

	// guards channel for concurrent publishers
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
	// Retry paces redeliveries of failed messages. Zero values use
	// DefaultBackoff.
	Retry Backoff
}

// Backoff is an exponential delay between redeliveries.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff starts at one second and caps at one minute.
var DefaultBackoff = Backoff{Base: time.Second, Max: time.Minute}

// Delay returns the pause before the retry following the given number of
// consecutive failures.
func (b Backoff) Delay(failures int) time.Duration {
	if b.Base <= 0 {
		b.Base = DefaultBackoff.Base
	}
	if b.Max <= 0 {
		b.Max = DefaultBackoff.Max
	}
	d := b.Base
	for i := 0; i < failures && d < b.Max; i++ {
		d *= 2
	}
	if d > b.Max {
		d = b.Max
	}
	return d
}

// sleep waits for d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// NewClient connects to RabbitMQ, opens a channel and declares the queue.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("RabbitMQ client connected", "queue", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		backoff: cfg.Retry,
		log:     log.With("component", "rabbitmq", "queue", cfg.Queue),
	}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishJSON marshals payload and publishes it as a persistent message.
func (c *Client) PublishJSON(ctx context.Context, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("message published", "bytes", len(body))
	return nil
}

// Consume delivers every message of the queue to handler until ctx is done
// or the channel closes. A message is acked when handler returns nil and
// nacked otherwise; requeue decides whether a failed message goes back.
// Requeued messages are held back by the client's Backoff, growing with
// consecutive failures.
func (c *Client) Consume(ctx context.Context, handler func(msg amqp.Delivery) error, requeue func(err error) bool) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for messages")

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if !c.process(ctx, msg, handler, requeue, &failures) {
				return nil
			}
		}
	}
}

// process handles one delivery and settles it. It returns false when ctx
// ended while a failed message was waiting for its retry.
func (c *Client) process(ctx context.Context, msg amqp.Delivery, handler func(msg amqp.Delivery) error, requeue func(err error) bool, failures *int) bool {
	err := handler(msg)
	if err == nil {
		*failures = 0
		if ackErr := msg.Ack(false); ackErr != nil {
			c.log.Error("failed to ack message", "tag", msg.DeliveryTag, "error", ackErr)
		}
		return true
	}

	again := requeue != nil && requeue(err)
	c.log.Error("failed to process message", "tag", msg.DeliveryTag, "requeue", again, "redelivered", msg.Redelivered, "error", err)
	alive := true
	if again {
		delay := c.backoff.Delay(*failures)
		*failures++
		alive = sleep(ctx, delay)
	}
	if nackErr := msg.Nack(false, again); nackErr != nil {
		c.log.Error("failed to nack message", "tag", msg.DeliveryTag, "error", nackErr)
	}
	return alive
}
