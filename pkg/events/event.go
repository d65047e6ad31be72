package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every event an aggregate records.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields shared by all domain events.
// Concrete events embed it so the envelope is serialized alongside their payload.
type BaseEvent struct {
	ID            uuid.UUID `json:"event_id"`
	Type          string    `json:"event_type"`
	AggregateUUID uuid.UUID `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	Tenant        uuid.UUID `json:"tenant_id"`
	Occurred      time.Time `json:"occurred_at"`
}

// NewBaseEvent creates an envelope with a fresh event ID stamped at the current UTC time.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string, tenantID uuid.UUID) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateUUID: aggregateID,
		AggregateKind: aggregateType,
		Tenant:        tenantID,
		Occurred:      time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventType() string      { return e.Type }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateUUID }
func (e BaseEvent) AggregateType() string  { return e.AggregateKind }
func (e BaseEvent) TenantID() uuid.UUID    { return e.Tenant }
func (e BaseEvent) OccurredAt() time.Time  { return e.Occurred }
