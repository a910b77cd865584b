package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/order"
)

const (
	OrderCreatedEventName    = "OrderCreated"
	OrderCreatedEventVersion = 1
	orderCreatedSchema       = "contracts/events/catalog/OrderCreated.v1.payload.schema.json"
)

type OrderCreatedItem struct {
	ProductID   int64       `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
	LineTotal   json.Number `json:"lineTotal"`
}

// OrderCreatedPayload represents the v1 payload schema.
type OrderCreatedPayload struct {
	OrderID   int64              `json:"orderId"`
	CreatedAt time.Time          `json:"createdAt"`
	Total     json.Number        `json:"total"`
	Items     []OrderCreatedItem `json:"items"`
}

// OrderCreatedEnvelope is the enveloped event structure.
type OrderCreatedEnvelope = EventEnvelope[OrderCreatedPayload]

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// OrderStream names the partition all OrderCreated events of one producer
// share, so their sequence numbers order placed orders globally.
func OrderStream(producer string) string {
	return producer + ".orders"
}

// BuildOrderCreatedEnvelope builds an enveloped OrderCreated event.
func BuildOrderCreatedEnvelope(o *order.Order, seq int64, producer string, meta EnvelopeMetadata, occurredAt time.Time) OrderCreatedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	items := make([]OrderCreatedItem, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, OrderCreatedItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			LineTotal:   money(l.LineTotal),
		})
	}

	return OrderCreatedEnvelope{
		EventName:     OrderCreatedEventName,
		EventVersion:  OrderCreatedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  OrderStream(producer),
		Sequence:      &seq,
		OccurredAt:    occurredAt,
		Schema:        orderCreatedSchema,
		Payload: OrderCreatedPayload{
			OrderID:   o.ID,
			CreatedAt: o.CreatedAt,
			Total:     money(o.Total),
			Items:     items,
		},
	}
}
