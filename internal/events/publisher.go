package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/order"
)

const publishTimeout = 3 * time.Second

type Sequencer interface {
	Next(ctx context.Context, stream string) (int64, error)
}

type amqpChannel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	mu       sync.Mutex
	ch       amqpChannel
	seq      Sequencer
	producer string
	now      func() time.Time
}

func NewPublisher(conn *amqp.Connection, seq Sequencer, producer string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return newPublisher(ch, seq, producer), nil
}

func newPublisher(ch amqpChannel, seq Sequencer, producer string) *Publisher {
	if producer == "" {
		producer = "catalog-service"
	}
	return &Publisher{
		ch:       ch,
		seq:      seq,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishOrderCreated implements order.Publisher. The request id on ctx, when
// present, becomes the event's correlation id.
func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	meta := EnvelopeMetadata{CorrelationID: middleware.GetReqID(ctx)}

	// held from sequence reservation to publish so the broker sees
	// OrderCreated events in sequence order
	p.mu.Lock()
	defer p.mu.Unlock()

	seq, err := p.seq.Next(ctx, OrderStream(p.producer))
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := BuildOrderCreatedEnvelope(o, seq, p.producer, meta, p.now())
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated envelope: %w", err)
	}

	return p.publishJSON(ctx, OrderCreatedRoutingKey, env.EventID, env.CorrelationID, body)
}

// publishJSON expects p.mu to be held.
func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Body:          body,
		},
	)
}
