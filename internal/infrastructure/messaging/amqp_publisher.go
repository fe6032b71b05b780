package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher publishes incidents as persistent JSON messages to a durable
// queue through the default exchange
type AMQPPublisher struct {
	conn      *amqp.Connection
	mu        sync.Mutex
	ch        *amqp.Channel
	queueName string
	logger    *slog.Logger
}

// NewAMQPPublisher dials url and declares queueName
func NewAMQPPublisher(url, queueName string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, queueName: queueName, logger: logger}, nil
}

// Report publishes the incident, logging instead of failing when the broker
// is unavailable
func (p *AMQPPublisher) Report(ctx context.Context, incident Incident) {
	if err := p.publish(ctx, incident); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish incident",
			slog.String("incident_id", incident.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	p.logger.InfoContext(ctx, "Published incident",
		slog.String("incident_id", incident.ID),
		slog.String("queue", p.queueName),
	)
}

func (p *AMQPPublisher) publish(ctx context.Context, incident Incident) error {
	body, err := incident.encode()
	if err != nil {
		return fmt.Errorf("failed to marshal incident: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    incident.ID,
			Timestamp:    incident.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish incident: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil && err != amqp.ErrClosed {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
