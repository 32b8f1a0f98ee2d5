package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_ExactTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler()
	registry.Register(handler, "order.placed", "order.paid")

	assert.Len(t, registry.GetHandlers("order.placed"), 1)
	assert.Len(t, registry.GetHandlers("order.paid"), 1)
	assert.Empty(t, registry.GetHandlers("order.cancelled"))
}

func TestHandlerRegistry_Patterns(t *testing.T) {
	registry := NewHandlerRegistry()
	products := newRecordingHandler()
	registry.Register(products, "product.*")

	assert.Len(t, registry.GetHandlers("product.updated"), 1)
	assert.Len(t, registry.GetHandlers("product.deleted"), 1)
	assert.Empty(t, registry.GetHandlers("product_picture.updated"))
	assert.Empty(t, registry.GetHandlers("category.updated"))
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	all := newRecordingHandler()
	registry.Register(all)

	assert.Len(t, registry.GetHandlers("anything.at_all"), 1)
}

func TestHandlerRegistry_DeduplicatesAcrossRoutes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler()
	registry.Register(handler, "setting.updated", "setting.*")
	registry.Register(handler)

	assert.Len(t, registry.GetHandlers("setting.updated"), 1)
	assert.Equal(t, 1, registry.Count())
}

func TestHandlerRegistry_OrderExactBeforeWildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	all := newRecordingHandler()
	exact := newRecordingHandler()
	registry.Register(all)
	registry.Register(exact, "store.updated")

	handlers := registry.GetHandlers("store.updated")
	assert.Len(t, handlers, 2)
	assert.Same(t, exact, handlers[0])
	assert.Same(t, all, handlers[1])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newRecordingHandler()
	b := newRecordingHandler()
	registry.Register(a, "poll.updated", "poll.*")
	registry.Register(a)
	registry.Register(b, "poll.updated")

	registry.Unregister(a)

	handlers := registry.GetHandlers("poll.updated")
	assert.Len(t, handlers, 1)
	assert.Same(t, b, handlers[0])
	assert.Equal(t, 1, registry.Count())
}
