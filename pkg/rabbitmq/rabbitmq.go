package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"

	"taskroom/pkg/mailer"
)

// EmailQueue is the durable queue outbound emails are published to.
const EmailQueue = "email_queue"

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the email queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareEmailQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected and %s declared.", EmailQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareEmailQueue(ch channel) error {
	_, err := ch.QueueDeclare(
		EmailQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", EmailQueue, err)
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

// Send publishes msg to the email queue for asynchronous delivery.
func (c *Client) Send(ctx context.Context, msg mailer.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	publishing, err := encodeEmail(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",         // exchange: default exchange
		EmailQueue, // routing key: the queue name
		false,      // mandatory
		false,      // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Queued email %q for %s", msg.Subject, msg.To)
	return nil
}

// ConsumeEmails starts a goroutine handing every queued email to handler.
// Successful messages are acked, failed ones requeued and undecodable ones dropped.
func (c *Client) ConsumeEmails(handler func(mailer.Message) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := declareEmailQueue(c.channel); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		EmailQueue, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for emails on %s", EmailQueue)

	go func() {
		for d := range msgs {
			handleDelivery(d, handler)
		}
	}()

	return nil
}

func handleDelivery(d amqp.Delivery, handler func(mailer.Message) error) {
	msg, err := decodeEmail(d.Body)
	if err != nil {
		log.Printf("Dropping malformed message %d: %v", d.DeliveryTag, err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Printf("Error nacking message %d: %v", d.DeliveryTag, nackErr)
		}
		return
	}

	if err := handler(msg); err != nil {
		log.Printf("Error processing message %d: %v", d.DeliveryTag, err)
		if requeueErr := d.Nack(false, true); requeueErr != nil {
			log.Printf("Error nacking message %d: %v", d.DeliveryTag, requeueErr)
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Printf("Error acking message %d: %v", d.DeliveryTag, ackErr)
	}
}

func encodeEmail(msg mailer.Message) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal email to JSON: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

func decodeEmail(body []byte) (mailer.Message, error) {
	var msg mailer.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return mailer.Message{}, fmt.Errorf("failed to unmarshal email: %w", err)
	}
	if msg.To == "" {
		return mailer.Message{}, fmt.Errorf("email has no recipient")
	}
	return msg, nil
}
