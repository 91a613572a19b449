package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
)

// amqpChannel is the part of *amqp091.Channel the sink uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPSink publishes notifications as JSON to a durable direct exchange.
type AMQPSink struct {
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
	queue    string
}

func newAMQPSink(ch amqpChannel, cfg config.AMQPConfig) (*AMQPSink, error) {
	s := &AMQPSink{channel: ch, exchange: cfg.Exchange, queue: cfg.Queue}
	if err := s.setup(); err != nil {
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return s, nil
}

// DialAMQP connects to the broker and declares the exchange and queue.
func DialAMQP(url string, cfg config.AMQPConfig) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	s, err := newAMQPSink(ch, cfg)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	s.conn = conn
	return s, nil
}

func (s *AMQPSink) setup() error {
	if err := s.channel.ExchangeDeclare(s.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := s.channel.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name.
	if err := s.channel.QueueBind(s.queue, s.queue, s.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (s *AMQPSink) Name() string { return "amqp" }

// Deliver publishes n as a persistent message.
func (s *AMQPSink) Deliver(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = s.channel.PublishWithContext(ctx, s.exchange, s.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.UnixMilli(n.Timestamp),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close shuts the channel and connection.
func (s *AMQPSink) Close() error {
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
