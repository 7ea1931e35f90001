// Package events publishes catalog lifecycle events (user registrations,
// item and category mutations) to a durable RabbitMQ queue so downstream
// workers can react without coupling to the API process.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// Event names published by the API.
const (
	UserRegistered  = "user.registered"
	ItemCreated     = "item.created"
	ItemUpdated     = "item.updated"
	ItemDeleted     = "item.deleted"
	CategoryCreated = "category.created"
)

const defaultQueue = "bazaar_events"

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Client holds the RabbitMQ connection and channel. A nil *Client is safe to
// use; Publish becomes a no-op so the API can run without a broker.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// envelope is the wire format of every published event.
type envelope struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewClient connects to RabbitMQ and declares the event queue.
func NewClient(cfg Config) (*Client, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = defaultQueue
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

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
	}

	log.Printf("RabbitMQ client connected, queue %s declared", queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
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
		return fmt.Errorf("errors closing events client: %v", errs)
	}
	return nil
}

// Publish sends an event envelope to the queue. It is a no-op on a nil
// client so callers never have to guard for a missing broker.
func (c *Client) Publish(event string, data interface{}) error {
	if c == nil || c.channel == nil {
		return nil
	}

	body, err := json.Marshal(envelope{
		Event:     event,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	err = c.channel.Publish(
		"",      // exchange: default
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
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}
	return nil
}

// Consume starts a goroutine that delivers queued events to handler,
// acknowledging on success and requeueing on failure.
func (c *Client) Consume(handler func(msg amqp.Delivery) error) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("events channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack: manual acknowledgement
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				log.Printf("Error processing event %d: %v", msg.DeliveryTag, err)
				if nackErr := msg.Nack(false, true); nackErr != nil {
					log.Printf("Error nacking event %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking event %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}
