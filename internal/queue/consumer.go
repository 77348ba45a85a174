package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded job. A returned error nacks the delivery
// without requeue so a poison message cannot spin the worker.
type Handler func(ctx context.Context, job NotificationJob) error

// Consumer drains all notification lanes, high lane first in declaration
// order, and hands each job to the handler.
type Consumer struct {
	url     string
	logger  *slog.Logger
	handler Handler
}

func NewConsumer(url string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, logger: logger}
}

// Run keeps a connection open until ctx is cancelled, reconnecting with
// backoff after broker failures.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Error("notify consumer dial failed", "error", err, "retry_in", backoff)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consume(ctx, conn); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("notify consumer stopped", "error", err)
		}
		_ = conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	done := make(chan struct{})
	defer close(done)

	var lanes []<-chan amqp.Delivery
	for _, lane := range Lanes() {
		if _, err := ch.QueueDeclare(string(lane), true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", lane, err)
		}

		msgs, err := ch.Consume(string(lane), "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", lane, err)
		}

		lanes = append(lanes, msgs)
	}

	deliveries := fanIn(done, lanes...)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				// every lane channel closed: the broker connection is gone
				// and Run must redial
				return errors.New("broker connection lost")
			}

			var job NotificationJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				c.logger.Error("notify job unmarshal failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}

			if err := c.handler(ctx, job); err != nil {
				c.logger.Error("notify job failed", "error", err, "type", job.Type, "user_id", job.UserID)
				_ = d.Nack(false, false)
				continue
			}

			_ = d.Ack(false)
		}
	}
}

// fanIn merges the per-lane delivery streams into one channel. The output
// closes once every input closed, which is how a broker connection loss
// surfaces to the consume loop. Closing done releases forwarders blocked on
// a send, so none of them leak when the loop exits first.
func fanIn(done <-chan struct{}, ins ...<-chan amqp.Delivery) <-chan amqp.Delivery {
	out := make(chan amqp.Delivery)

	var wg sync.WaitGroup
	for _, in := range ins {
		wg.Add(1)
		go func(in <-chan amqp.Delivery) {
			defer wg.Done()
			for d := range in {
				select {
				case out <- d:
				case <-done:
					return
				}
			}
		}(in)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
