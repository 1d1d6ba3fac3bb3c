package rabbitMQ

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/notification-gateway/internal/entity"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Queue interface {
	Publish(ctx context.Context, notificationType string, message interface{}) error
	HealthCheck() error
	Close() error
}

type RabbitMQConfig struct {
	URL          string
	ExchangeName string
	RetryCount   int
	RetryDelay   time.Duration
}

// RabbitMQ is a shared publisher over one durable direct exchange. The
// connection is a single mutable resource used by all in-flight requests, so
// every publish and reconnect happens under mu.
type RabbitMQ struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	config  RabbitMQConfig
}

func NewRabbitMQ(config RabbitMQConfig) *RabbitMQ {
	return &RabbitMQ{config: config}
}

// Connect attempts the initial connection with bounded retries. Failure is not
// fatal: the process still serves requests and the next publish reconnects
// lazily.
func (r *RabbitMQ) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for attempt := 1; attempt <= r.config.RetryCount; attempt++ {
		if err = r.connectLocked(); err == nil {
			return nil
		}
		logrus.Warnf("RabbitMQ connection attempt %d/%d failed: %s", attempt, r.config.RetryCount, err.Error())
		if attempt < r.config.RetryCount {
			time.Sleep(r.config.RetryDelay)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", r.config.RetryCount, err)
}

// connectLocked dials and declares the exchange. Callers must hold mu.
func (r *RabbitMQ) connectLocked() error {
	conn, err := amqp.Dial(r.config.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		r.config.ExchangeName, // name
		"direct",              // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	r.conn = conn
	r.channel = channel
	logrus.Infof("RabbitMQ connected, exchange %q declared", r.config.ExchangeName)
	return nil
}

// RoutingKey maps a notification type to its routing key. An empty result
// means the type has no destination.
func RoutingKey(notificationType string) string {
	switch notificationType {
	case entity.TypeEmail:
		return entity.TypeEmail
	case entity.TypePush:
		return entity.TypePush
	}
	return ""
}

// Publish sends a persistent message to the routing key for the given
// notification type, reconnecting first if the channel is absent or closed.
// Unknown types are logged and dropped; request validation keeps them from
// getting this far.
func (r *RabbitMQ) Publish(ctx context.Context, notificationType string, message interface{}) error {
	routingKey := RoutingKey(notificationType)
	if routingKey == "" {
		logrus.Warnf("unknown notification type %q, message dropped", notificationType)
		return nil
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel == nil || r.channel.IsClosed() {
		logrus.Warn("RabbitMQ channel is closed, reconnecting")
		if err := r.connectLocked(); err != nil {
			return fmt.Errorf("%w: %s", entity.ErrPublishFailed, err.Error())
		}
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.config.ExchangeName, // exchange
		routingKey,            // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %s", entity.ErrPublishFailed, err.Error())
	}

	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ: %v", errs)
	}

	return nil
}

// HealthCheck проверяет соединение с RabbitMQ
func (r *RabbitMQ) HealthCheck() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	testChannel, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("RabbitMQ health check failed: %w", err)
	}
	testChannel.Close()

	return nil
}
