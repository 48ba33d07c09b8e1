package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *slog.Logger

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

func NewRabbitMQ(url string, log *slog.Logger) (*RabbitMQ, error) {
	const op = "messaging.NewRabbitMQ"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to rabbitmq: %w", op, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: failed to open channel: %w", op, err)
	}

	log = log.With(slog.String("component", "messaging/rabbitmq"))
	log.Info("connected to rabbitmq")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
		log:     log,
	}, nil
}

// DeclareQueue creates a durable queue if it does not exist yet.
func (r *RabbitMQ) DeclareQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.channel.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	r.log.Info("queue declared", slog.String("queue", name))

	return nil
}

// Publish sends msg to queue through the default exchange.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.channel.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	r.log.Debug("message published", slog.String("queue", queue), slog.String("type", msg.Type))

	return nil
}

func (r *RabbitMQ) Close() error {
	var err error

	if r.channel != nil {
		err = r.channel.Close()
	}

	if r.conn != nil {
		if cerr := r.conn.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
