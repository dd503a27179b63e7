package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// EventPublisher публикует исходы сессий для внешних потребителей.
type EventPublisher interface {
	PublishSessionCompleted(ctx context.Context, event *models.SessionCompletedEvent) error
	PublishSessionFailed(ctx context.Context, event *models.SessionFailedEvent) error
	Close() error
}

type rabbitMQClient struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchange     string
	completedKey string
	failedKey    string
	queueName    string
	logger       zerolog.Logger
}

func NewRabbitMQClient(url, exchange, completedKey, failedKey, queueName string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// одна очередь получает оба исхода
	for _, key := range []string{completedKey, failedKey} {
		if err := channel.QueueBind(queue.Name, key, exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queue.Name).
		Str("completed_key", completedKey).
		Str("failed_key", failedKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQClient{
		conn:         conn,
		channel:      channel,
		exchange:     exchange,
		completedKey: completedKey,
		failedKey:    failedKey,
		queueName:    queue.Name,
		logger:       logger,
	}, nil
}

func (c *rabbitMQClient) PublishSessionCompleted(ctx context.Context, event *models.SessionCompletedEvent) error {
	if err := c.publish(ctx, c.completedKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("run_id", event.RunID).
		Str("session_id", event.SessionID).
		Int("results", event.ResultCount).
		Msg("Session completed event published")
	return nil
}

func (c *rabbitMQClient) PublishSessionFailed(ctx context.Context, event *models.SessionFailedEvent) error {
	if err := c.publish(ctx, c.failedKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("run_id", event.RunID).
		Str("session_id", event.SessionID).
		Msg("Session failed event published")
	return nil
}

func (c *rabbitMQClient) publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (c *rabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}

type noopPublisher struct{}

// NewNoopPublisher используется, когда rabbitmq.enabled=false.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishSessionCompleted(context.Context, *models.SessionCompletedEvent) error {
	return nil
}

func (noopPublisher) PublishSessionFailed(context.Context, *models.SessionFailedEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
