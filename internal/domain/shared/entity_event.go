package shared

import (
	"github.com/google/uuid"
)

// EntityAction is the kind of mutation an EntityEvent reports
type EntityAction string

const (
	EntityInserted EntityAction = "inserted"
	EntityUpdated  EntityAction = "updated"
	EntityDeleted  EntityAction = "deleted"
)

// AllEntityActions lists every mutation kind
func AllEntityActions() []EntityAction {
	return []EntityAction{EntityInserted, EntityUpdated, EntityDeleted}
}

// EntityEventType builds the event type string, e.g. "product.updated"
func EntityEventType(entity string, action EntityAction) string {
	return entity + "." + string(action)
}

// EntityEvent is published after an entity is inserted, updated or deleted.
// Refs carries ids of related rows (e.g. "product_id" on a product_picture
// mapping) so that subscribers can target narrower cache prefixes.
type EntityEvent struct {
	BaseDomainEvent
	Entity string               `json:"entity"`
	Action EntityAction         `json:"action"`
	Refs   map[string]uuid.UUID `json:"refs,omitempty"`
}

// NewEntityEvent creates an entity mutation event
func NewEntityEvent(entity string, action EntityAction, entityID, tenantID uuid.UUID) *EntityEvent {
	return &EntityEvent{
		BaseDomainEvent: NewBaseDomainEvent(EntityEventType(entity, action), entity, entityID, tenantID),
		Entity:          entity,
		Action:          action,
		Refs:            make(map[string]uuid.UUID),
	}
}

// WithRef attaches a related id to the event
func (e *EntityEvent) WithRef(name string, id uuid.UUID) *EntityEvent {
	e.Refs[name] = id
	return e
}

// Ref returns a related id, or uuid.Nil when absent
func (e *EntityEvent) Ref(name string) uuid.UUID {
	return e.Refs[name]
}
