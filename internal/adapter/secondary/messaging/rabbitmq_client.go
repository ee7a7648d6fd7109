package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/logger"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

const (
	ExchangeName  = "payments"
	QueueName     = "payment_events"
	RoutingKey    = "payment.settled"
	PrefetchCount = 1 // Process one message at a time per worker
)

// RabbitMQClient is a secondary adapter that implements the PaymentEvents
// output port
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitMQClient creates a new RabbitMQ client (returns interface for ports)
func NewRabbitMQClient(amqpURL string) (output.PaymentEvents, error) {
	return NewRabbitMQClientConcrete(amqpURL)
}

// NewRabbitMQClientConcrete creates a new RabbitMQ client (returns concrete type for workers)
func NewRabbitMQClientConcrete(amqpURL string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange
	err = channel.QueueBind(
		QueueName,
		RoutingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
	}, nil
}

// PublishPaymentEvent publishes a terminal payment lifecycle event
func (c *RabbitMQClient) PublishPaymentEvent(ctx context.Context, event output.PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.PublishWithContext(
		ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // Make message persistent
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Info(ctx, "published payment event",
		zap.String("payment_id", event.PaymentID.String()),
		zap.String("status", string(event.Status)),
	)
	return nil
}

// ConsumePaymentEvents starts consuming payment lifecycle events
func (c *RabbitMQClient) ConsumePaymentEvents(handler func(output.PaymentEvent) error) error {
	// Set QoS to process one message at a time
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "started consuming payment events")

	go func() {
		for msg := range msgs {
			var event output.PaymentEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				logger.Error(ctx, "failed to unmarshal event", err)
				msg.Nack(false, false) // Drop malformed message
				continue
			}

			if err := handler(event); err != nil {
				logger.Error(ctx, "failed to handle payment event", err,
					zap.String("payment_id", event.PaymentID.String()),
				)
				// An unknown payment will never appear; retrying is pointless
				if errors.Is(err, core.ErrPaymentNotFound) {
					msg.Ack(false)
				} else {
					msg.Nack(false, true) // Requeue for retry
				}
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
