package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher публикует доменные события
type Publisher interface {
	PublishAttemptCreated(ctx context.Context, event *AttemptCreated) error
	Close() error
}

// EventPublisher публикует события в topic exchange RabbitMQ
type EventPublisher struct {
	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
}

// NewEventPublisher подключается к RabbitMQ. Пустой URI отключает публикацию.
func NewEventPublisher(rabbitURI, exchangeName string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("[EventPublisher] RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{enabled: false}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("[EventPublisher] Connected to RabbitMQ, exchange %s", exchangeName)
	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		enabled:      true,
	}, nil
}

// PublishAttemptCreated публикует событие attempt.created
func (p *EventPublisher) PublishAttemptCreated(ctx context.Context, event *AttemptCreated) error {
	return p.publish(ctx, AttemptCreatedKey, event)
}

func (p *EventPublisher) publish(ctx context.Context, routingKey string, event any) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp091.Channel не рассчитан на параллельную публикацию
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", routingKey, err)
	}
	return nil
}

// Close закрывает канал и соединение
func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		log.Printf("[EventPublisher] Error closing channel: %v", err)
	}
	return p.conn.Close()
}

// NoopPublisher отбрасывает события (публикация выключена в конфигурации)
type NoopPublisher struct{}

// PublishAttemptCreated ничего не делает
func (NoopPublisher) PublishAttemptCreated(context.Context, *AttemptCreated) error { return nil }

// Close ничего не делает
func (NoopPublisher) Close() error { return nil }
