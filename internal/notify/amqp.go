package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultQueueName is the queue reminder notifications travel on.
	DefaultQueueName = "task_reminders"
	// DefaultExchangeName is the exchange the reminder queue binds to.
	DefaultExchangeName = "taskflow_notifications"
	// routingKey for reminder payloads.
	routingKey = "reminders"
)

// Queue is the AMQP-backed transport between the reminder scheduler
// (publisher) and the notifier worker (consumer).
type Queue struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queueName    string
	exchangeName string
}

// NewQueue connects to RabbitMQ and declares the notification exchange and
// queue. Both are durable; payloads survive a broker restart.
func NewQueue(amqpURL string) (*Queue, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &Queue{
		conn:         conn,
		channel:      ch,
		queueName:    DefaultQueueName,
		exchangeName: DefaultExchangeName,
	}
	if err := q.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup notification queue: %w", err)
	}
	return q, nil
}

func (q *Queue) setup() error {
	err := q.channel.ExchangeDeclare(
		q.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = q.channel.QueueDeclare(
		q.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := q.channel.QueueBind(q.queueName, routingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Notify publishes a reminder notification. Implements Notifier, so the
// scheduler can dispatch straight onto the queue.
func (q *Queue) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = q.channel.PublishWithContext(
		ctx,
		q.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    n.ID,
			Timestamp:    n.CreatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Delivery is one consumed notification plus its acknowledgement handle.
type Delivery struct {
	Notification Notification
	raw          amqp.Delivery
}

// Ack acknowledges the delivery.
func (d *Delivery) Ack() error {
	return d.raw.Ack(false)
}

// Nack rejects the delivery, optionally requeueing it.
func (d *Delivery) Nack(requeue bool) error {
	return d.raw.Nack(false, requeue)
}

// Consume returns a channel of reminder deliveries. Malformed payloads are
// rejected without requeue and skipped. The channel closes when ctx is
// cancelled or the connection drops.
func (q *Queue) Consume(ctx context.Context, prefetchCount int) (<-chan Delivery, error) {
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}
	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.ConsumeWithContext(
		ctx,
		q.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer func() { _ = consumeCh.Close() }()
		for raw := range deliveries {
			var n Notification
			if err := json.Unmarshal(raw.Body, &n); err != nil {
				_ = raw.Nack(false, false)
				continue
			}
			select {
			case out <- Delivery{Notification: n, raw: raw}:
			case <-ctx.Done():
				_ = raw.Nack(false, true)
				return
			}
		}
	}()
	return out, nil
}

// HealthCheck verifies the broker connection is alive.
func (q *Queue) HealthCheck(context.Context) error {
	if q.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and connection.
func (q *Queue) Close() error {
	if err := q.channel.Close(); err != nil {
		_ = q.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	return q.conn.Close()
}
