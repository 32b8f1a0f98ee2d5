package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	// EntityOrder is the entity name used in mutation events
	EntityOrder = "order"

	EventTypeOrderPlaced    = "order.placed"
	EventTypeOrderPaid      = "order.paid"
	EventTypeOrderCancelled = "order.cancelled"
	EventTypeOrderRefunded  = "order.refunded"
	EventTypeOrderCompleted = "order.completed"
)

// PlacedEvent is published once an order has been persisted at checkout
type PlacedEvent struct {
	shared.BaseDomainEvent
	OrderGUID  uuid.UUID       `json:"order_guid"`
	CustomerID uuid.UUID       `json:"customer_id"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// StatusEvent is published on paid, cancelled, refunded and completed transitions
type StatusEvent struct {
	shared.BaseDomainEvent
	OrderStatus   Status          `json:"order_status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
}

func newStatusEvent(eventType string, o *Order, amount decimal.Decimal) *StatusEvent {
	return &StatusEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, EntityOrder, o.ID, o.TenantID),
		OrderStatus:     o.OrderStatus,
		PaymentStatus:   o.PaymentStatus,
		Amount:          amount,
	}
}
