package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, OpenTimeout: 30 * time.Second}
}

// Publisher sends reservation events to a topic exchange. The routing key
// is the event action. While the broker keeps failing the breaker opens
// and events fail fast instead of waiting on the network.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
	breaker  *gobreaker.CircuitBreaker[struct{}]
	log      *zap.Logger
}

func Dial(url, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Info("rabbitmq publisher connected", zap.String("exchange", exchange))

	p := NewPublisher(ch, exchange, DefaultBreakerSettings(), log)
	p.conn = conn
	return p, nil
}

func NewPublisher(
	ch Channel,
	exchange string,
	settings BreakerSettings,
	log *zap.Logger,
) *Publisher {
	p := &Publisher{
		channel:  ch,
		exchange: exchange,
		log:      log,
	}

	p.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "rabbitmq:" + exchange,
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return p
}

type message struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	EntityID   *uint     `json:"entity_id,omitempty"`
	Metadata   any       `json:"metadata,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (p *Publisher) Name() string { return "rabbitmq" }

func (p *Publisher) Write(ctx context.Context, ev audit.Event) error {
	body, err := json.Marshal(message{
		ID:         ev.ID,
		Action:     ev.Action,
		Entity:     ev.Entity,
		EntityID:   ev.EntityID,
		Metadata:   ev.Metadata,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil {
		return err
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		return struct{}{}, p.channel.PublishWithContext(ctx,
			p.exchange,
			ev.Action,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    ev.ID,
				Timestamp:    ev.OccurredAt,
				Body:         body,
			},
		)
	})
	return err
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

var _ audit.Sink = (*Publisher)(nil)
