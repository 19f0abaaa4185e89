package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchangeName is the default activity exchange name
	DefaultExchangeName = "poll_events"
	// bindAll matches every routing key on the topic exchange
	bindAll = "poll.#"
)

// ErrClosed is returned when using a closed connection
var ErrClosed = errors.New("rabbitmq connection closed")

// RabbitMQ publishes and consumes poll events on a topic exchange
type RabbitMQ struct {
	conn         *amqp.Connection
	mu           sync.Mutex
	channel      *amqp.Channel
	exchangeName string
}

// NewRabbitMQ connects to RabbitMQ and declares the activity exchange
func NewRabbitMQ(amqpURL, exchangeName string) (*RabbitMQ, error) {
	if exchangeName == "" {
		exchangeName = DefaultExchangeName
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &RabbitMQ{
		conn:         conn,
		channel:      ch,
		exchangeName: exchangeName,
	}

	if err := q.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup exchange: %w", err)
	}

	return q, nil
}

func (q *RabbitMQ) setup() error {
	err := q.channel.ExchangeDeclare(
		q.exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Publish sends an event to the exchange under its routing key
func (q *RabbitMQ) Publish(ctx context.Context, event *PollEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Transient,
		MessageId:    event.ID.String(),
		Timestamp:    event.CreatedAt,
		Type:         string(event.Type),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.channel == nil || q.channel.IsClosed() {
		return ErrClosed
	}
	err = q.channel.PublishWithContext(
		ctx,
		q.exchangeName,
		event.RoutingKey(),
		false, // mandatory
		false, // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe binds a private, auto-deleted queue to the exchange and
// streams every event published to it
func (q *RabbitMQ) Subscribe(ctx context.Context) (<-chan *PollEvent, <-chan error, error) {
	// Consumers get their own channel so publishing is never blocked by delivery
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}
	fail := func(err error) (<-chan *PollEvent, <-chan error, error) {
		_ = consumeCh.Close()
		return nil, nil, err
	}

	queue, err := consumeCh.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fail(fmt.Errorf("failed to declare queue: %w", err))
	}

	if err := consumeCh.QueueBind(queue.Name, bindAll, q.exchangeName, false, nil); err != nil {
		return fail(fmt.Errorf("failed to bind queue: %w", err))
	}

	deliveries, err := consumeCh.Consume(
		queue.Name,
		"",    // consumer tag (empty = auto-generate)
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fail(fmt.Errorf("failed to start consuming: %w", err))
	}

	events := make(chan *PollEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)
		defer func() { _ = consumeCh.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					select {
					case errs <- fmt.Errorf("delivery channel closed"):
					default:
					}
					return
				}

				var ev PollEvent
				if err := json.Unmarshal(delivery.Body, &ev); err != nil {
					select {
					case errs <- fmt.Errorf("failed to unmarshal event: %w", err):
					default:
					}
					continue
				}

				select {
				case <-ctx.Done():
					return
				case events <- &ev:
				}
			}
		}
	}()

	return events, errs, nil
}

// Close closes the channel and the connection
func (q *RabbitMQ) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var err error
	if q.channel != nil {
		err = q.channel.Close()
		q.channel = nil
	}
	if q.conn != nil {
		if closeErr := q.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// HealthCheck verifies the connection and publishing channel are open
func (q *RabbitMQ) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.conn == nil || q.conn.IsClosed() {
		return ErrClosed
	}
	if q.channel == nil || q.channel.IsClosed() {
		return fmt.Errorf("publishing channel closed")
	}
	return nil
}
