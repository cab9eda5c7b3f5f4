package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialapp/internal/logger"
)

type settlement struct {
	tag     uint64
	acked   bool
	requeue bool
}

// recorder is an amqp.Acknowledger that remembers how deliveries ended.
type recorder struct {
	settled []settlement
}

func (r *recorder) Ack(tag uint64, _ bool) error {
	r.settled = append(r.settled, settlement{tag: tag, acked: true})
	return nil
}

func (r *recorder) Nack(tag uint64, _ bool, requeue bool) error {
	r.settled = append(r.settled, settlement{tag: tag, requeue: requeue})
	return nil
}

func (r *recorder) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

var errTransient = errors.New("provider unavailable")

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second}
	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 8*time.Second, b.Delay(3))
	assert.Equal(t, 10*time.Second, b.Delay(4))
	assert.Equal(t, 10*time.Second, b.Delay(100))

	assert.Equal(t, DefaultBackoff.Base, Backoff{}.Delay(0))
	assert.Equal(t, DefaultBackoff.Max, Backoff{}.Delay(1000))
}

func TestProcess_RetryPolicy(t *testing.T) {
	c := &Client{log: logger.NewNop(), backoff: Backoff{Base: 20 * time.Millisecond, Max: 40 * time.Millisecond}}
	acks := &recorder{}
	ctx := context.Background()
	failures := 0
	retryAll := func(error) bool { return true }
	failing := func(amqp.Delivery) error { return errTransient }

	start := time.Now()
	require.True(t, c.process(ctx, amqp.Delivery{Acknowledger: acks, DeliveryTag: 1}, failing, retryAll, &failures))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	start = time.Now()
	require.True(t, c.process(ctx, amqp.Delivery{Acknowledger: acks, DeliveryTag: 2, Redelivered: true}, failing, retryAll, &failures))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, 2, failures)

	// success resets the streak
	ok := func(amqp.Delivery) error { return nil }
	require.True(t, c.process(ctx, amqp.Delivery{Acknowledger: acks, DeliveryTag: 3}, ok, retryAll, &failures))
	assert.Zero(t, failures)

	// permanent failures are dropped without waiting
	start = time.Now()
	require.True(t, c.process(ctx, amqp.Delivery{Acknowledger: acks, DeliveryTag: 4}, failing, func(error) bool { return false }, &failures))
	assert.Less(t, time.Since(start), 20*time.Millisecond)
	assert.Zero(t, failures)

	assert.Equal(t, []settlement{
		{tag: 1, requeue: true},
		{tag: 2, requeue: true},
		{tag: 3, acked: true},
		{tag: 4, requeue: false},
	}, acks.settled)
}

func TestProcess_CancelDuringBackoffRequeues(t *testing.T) {
	c := &Client{log: logger.NewNop(), backoff: Backoff{Base: time.Hour, Max: time.Hour}}
	acks := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failures := 0
	alive := c.process(ctx, amqp.Delivery{Acknowledger: acks, DeliveryTag: 7},
		func(amqp.Delivery) error { return errTransient },
		func(error) bool { return true },
		&failures)

	assert.False(t, alive)
	assert.Equal(t, []settlement{{tag: 7, requeue: true}}, acks.settled)
}
