package telemetry

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics is an event handler that turns order lifecycle events into
// counters and an order total histogram, labelled by store
type OrderMetrics struct {
	placed      *Counter
	transitions *Counter
	totals      *Histogram
}

// NewOrderMetrics creates the order instruments on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	placed, err := NewCounter(meter, "storefront_orders_placed_total", "Orders placed at checkout", "{order}")
	if err != nil {
		return nil, err
	}
	transitions, err := NewCounter(meter, "storefront_order_transitions_total", "Order status transitions", "{event}")
	if err != nil {
		return nil, err
	}
	totals, err := NewHistogram(meter, HistogramOpts{
		Name:        "storefront_order_total",
		Description: "Order totals at checkout",
		Unit:        "{currency}",
		Boundaries:  OrderTotalBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &OrderMetrics{placed: placed, transitions: transitions, totals: totals}, nil
}

func (m *OrderMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderPaid,
		order.EventTypeOrderCancelled,
		order.EventTypeOrderRefunded,
		order.EventTypeOrderCompleted,
	}
}

func (m *OrderMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	store := AttrStoreID.String(event.TenantID().String())
	switch e := event.(type) {
	case *order.PlacedEvent:
		m.placed.Inc(ctx, store)
		m.totals.Record(ctx, e.OrderTotal.InexactFloat64(), store)
	default:
		m.transitions.Inc(ctx, store, AttrEventType.String(event.EventType()))
	}
	return nil
}
