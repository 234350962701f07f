package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"draftroom/pkg/config"
	"draftroom/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	CollabEventQueueName = "collab_events"
	CollabEventExchange  = "collab-events"
	CollabEventKey       = "event"

	DigestQueueName = "notification_digests"
	DigestExchange  = "digests"
	DigestKey       = "digest"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	client := &Client{conn: conn, channel: channel, logger: log}

	// Intake side: collaboration events published by the rest of the platform
	if err := client.declare(CollabEventExchange, CollabEventQueueName, CollabEventKey, amqp.Table{
		"x-max-priority": 10, // urgent events jump the queue
	}); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	// Delivery side: digest batches handed off to the mail worker
	if err := client.declare(DigestExchange, DigestQueueName, DigestKey, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return client, nil
}

func (c *Client) declare(exchange, queue, routingKey string, args amqp.Table) error {
	err := c.channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	_, err = c.channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		args,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	err = c.channel.QueueBind(
		queue,
		routingKey,
		exchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	return nil
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

// PublishDigest hands a digest batch to the deferred delivery channel. The
// payload is marshaled to JSON; the mail worker on the other side owns the
// actual delivery.
func (c *Client) PublishDigest(payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}

	err = c.channel.Publish(
		DigestExchange, // exchange
		DigestKey,      // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish digest to exchange=%s: %v", DigestExchange, err)
		return fmt.Errorf("failed to publish digest: %w", err)
	}

	return nil
}

// ConsumeEvents consumes collaboration events from the intake queue. The
// handler receives the raw body; decoding happens at the service boundary.
// A handler error rejects the message without requeue; routing is never
// retried.
func (c *Client) ConsumeEvents(handler func(body []byte) error) error {
	msgs, err := c.channel.Consume(
		CollabEventQueueName, // queue
		"",                   // consumer
		false,                // auto-ack (we'll manually ack after processing)
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from event queue: %s", CollabEventQueueName)

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed to process event: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false) // Reject and don't requeue; routing is not retried
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// GetQueueLength returns the number of messages waiting in the event queue.
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(CollabEventQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
