package event

import (
	"strings"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
)

// HandlerRegistry maps event types to handlers.
// A type ending in ".*" is a pattern matching every type with that prefix,
// e.g. "product.*" receives product.inserted, product.updated and so on.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler // exact type -> handlers
	patterns map[string][]shared.EventHandler // type prefix -> handlers
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
		patterns: make(map[string][]shared.EventHandler),
	}
}

// Register adds a handler for event types or patterns.
// Without types the handler receives all events.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = append(r.wildcard, handler)
		return
	}

	for _, eventType := range eventTypes {
		if prefix, ok := strings.CutSuffix(eventType, "*"); ok {
			r.patterns[prefix] = append(r.patterns[prefix], handler)
			continue
		}
		r.handlers[eventType] = append(r.handlers[eventType], handler)
	}
}

// Unregister removes a handler everywhere
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = removeHandler(r.wildcard, handler)
	for _, m := range []map[string][]shared.EventHandler{r.handlers, r.patterns} {
		for key, handlers := range m {
			m[key] = removeHandler(handlers, handler)
			if len(m[key]) == 0 {
				delete(m, key)
			}
		}
	}
}

// GetHandlers returns exact, pattern and wildcard handlers for a type.
// A handler registered through several routes is returned once.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]bool)
	var result []shared.EventHandler
	add := func(handlers []shared.EventHandler) {
		for _, h := range handlers {
			if !seen[h] {
				seen[h] = true
				result = append(result, h)
			}
		}
	}

	add(r.handlers[eventType])
	for prefix, handlers := range r.patterns {
		if strings.HasPrefix(eventType, prefix) {
			add(handlers)
		}
	}
	add(r.wildcard)
	return result
}

// Count returns the number of distinct registered handlers
func (r *HandlerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]bool)
	for _, h := range r.wildcard {
		seen[h] = true
	}
	for _, m := range []map[string][]shared.EventHandler{r.handlers, r.patterns} {
		for _, handlers := range m {
			for _, h := range handlers {
				seen[h] = true
			}
		}
	}
	return len(seen)
}

func removeHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}
