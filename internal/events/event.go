// Package events carries domain events between the request service, the
// availability sync, the scanner and outbound notification handlers, and
// keeps an audit trail of them in SQLite.
package events

import "time"

// Entity types an event can be about.
const (
	EntityMedia   = "media"
	EntitySeason  = "season"
	EntityRequest = "request"
	EntityJob     = "job"
)

// Event is implemented by everything published on the Bus.
type Event interface {
	EventType() string
	EntityType() string
	EntityID() int64
	OccurredAt() time.Time
}

// BaseEvent is embedded by every concrete event. Its JSON fields are part of
// the persisted payload.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return NewBaseEventAt(eventType, entityType, entityID, time.Now())
}

// NewBaseEventAt stamps an event with at, for callers that carry their own
// clock.
func NewBaseEventAt(eventType, entityType string, entityID int64, at time.Time) BaseEvent {
	return BaseEvent{Type: eventType, Entity: entityType, ID: entityID, Timestamp: at}
}
