package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// PublishTimeout bounds a single publish.
const PublishTimeout = 5 * time.Second

// Publisher sends month change notifications.
type Publisher interface {
	PublishHoursSaved(ctx context.Context, msg HoursSaved) error
	PublishModelsChanged(ctx context.Context, msg ModelsChanged) error
	Close() error
}

// =============================================================================
// NOP PUBLISHER
// =============================================================================

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishHoursSaved(context.Context, HoursSaved) error       { return nil }
func (NopPublisher) PublishModelsChanged(context.Context, ModelsChanged) error { return nil }
func (NopPublisher) Close() error                                              { return nil }

// =============================================================================
// AMQP PUBLISHER
// =============================================================================

// channel is the part of *amqp091.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes persistent JSON messages to a durable direct exchange.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newAMQPPublisher(ch, exchange)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel, exchange string) (*AMQPPublisher, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{channel: ch, exchange: exchange}, nil
}

// PublishHoursSaved publishes a hours.saved message.
func (p *AMQPPublisher) PublishHoursSaved(ctx context.Context, msg HoursSaved) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := p.publish(ctx, RoutingHoursSaved, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published hours saved message",
		"user_id", msg.UserID,
		"month", msg.Month,
		"days", msg.Days,
		"exchange", p.exchange)
	return nil
}

// PublishModelsChanged publishes a models.changed message.
func (p *AMQPPublisher) PublishModelsChanged(ctx context.Context, msg ModelsChanged) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.publish(ctx, RoutingModelsChanged, body)
}

func (p *AMQPPublisher) publish(ctx context.Context, key string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	err := p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*AMQPPublisher)(nil)
)
