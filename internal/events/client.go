// Package events publishes expense change notifications over AMQP for
// downstream consumers (audit, analytics). Publishing is fire-and-forget
// from the caller's point of view: a failed publish is logged and never
// fails the write that triggered it. The view store does not consume
// these events; they are not a sync channel.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/rabbitmq/amqp091-go"

	"expensedash/internal/log"
)

const (
	dialAttempts   = 5
	dialDelay      = 2 * time.Second
	publishTimeout = 5 * time.Second
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       *log.Logger
}

// NewClient dials the broker, retrying briefly so the app survives a
// broker that is still starting, then declares the exchange and queue.
func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	var conn *amqp091.Connection
	err := retry.Do(
		func() error {
			var dialErr error
			conn, dialErr = amqp091.Dial(url)
			return dialErr
		},
		retry.Attempts(dialAttempts),
		retry.Delay(dialDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentEvents),
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,
		c.queueName, // routing key, direct exchange
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Publish sends an expense event. Errors are returned so the caller can
// log them; callers must not fail their write on a publish error.
func (c *Client) Publish(ctx context.Context, event *ExpenseEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	c.logger.InfoContext(ctx, "Published expense event",
		log.FieldOperation, event.Action,
		log.FieldExpenseID, event.ExpenseID,
		log.FieldOwner, event.Owner)
	return nil
}

// Consume delivers expense events to handler until ctx is cancelled.
// A handler error nacks the delivery back onto the queue.
func (c *Client) Consume(ctx context.Context, handler func(*ExpenseEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming expense events")

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping event consumption", log.FieldError, ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			event, err := ExpenseEventFromJSON(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Failed to unmarshal event", log.FieldError, err)
				delivery.Nack(false, false) // reject, don't requeue
				continue
			}

			if err := handler(event); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle event",
					log.FieldError, err,
					log.FieldExpenseID, event.ExpenseID)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
