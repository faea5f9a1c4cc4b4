package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartAMQPConsumer connects to RabbitMQ, declares the durable queue and
// hands every delivery to rec.  It runs a reconnect loop with exponential
// backoff and only returns once ctx is cancelled.  Messages that cannot be
// processed are rejected without requeue so the consumer keeps moving.
func StartAMQPConsumer(ctx context.Context, url, queue string, rec *Recorder, log *zap.SugaredLogger) error {
	if queue == "" {
		queue = ReservationQueue
	}
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnw("event consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queue, rec, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnw("event consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, rec *Recorder, log *zap.SugaredLogger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnw("event consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := rec.HandleMessage(d.Body); err != nil {
			log.Errorw("event consumer: handle message failed", "error", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

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
