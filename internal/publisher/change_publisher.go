package publisher

import (
	"context"
	"fmt"
	"time"

	"eventBooking/internal/booking"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const publishTimeout = 3 * time.Second

type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, msg amqp.Publishing) error
}

// ChangePublisher forwards committed booking and event changes to a queue.
type ChangePublisher struct {
	broker Broker
	queue  string
	newID  func() string
}

func NewChangePublisher(broker Broker, queue string) (*ChangePublisher, error) {
	if err := broker.DeclareQueue(queue); err != nil {
		return nil, err
	}

	return &ChangePublisher{
		broker: broker,
		queue:  queue,
		newID:  uuid.NewString,
	}, nil
}

func (p *ChangePublisher) Notify(ctx context.Context, change booking.Change) error {
	const op = "publisher.ChangePublisher.Notify"

	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal change: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    p.newID(),
		Type:         string(change.Kind),
		Timestamp:    change.OccurredAt,
		Body:         body,
	}

	if err = p.broker.Publish(ctx, p.queue, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
