package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventsExchange is shared by every service of the shop; consumers bind
// their own queues by routing key.
const (
	EventsExchange         = "ecommerce.events"
	OrderCreatedRoutingKey = "order.created.v1"
)

type exchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

// declareTopology must agree with the other services' declarations or the
// broker closes the channel.
func declareTopology(ch exchangeDeclarer) error {
	const (
		durable    = true
		autoDelete = false
		internal   = false
		noWait     = false
	)
	if err := ch.ExchangeDeclare(EventsExchange, amqp.ExchangeTopic, durable, autoDelete, internal, noWait, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}
	return nil
}
