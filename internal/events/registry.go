package events

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Registry turns stored payloads back into typed events.
type Registry struct {
	types map[string]func() Event
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]func() Event)}
}

// Register binds eventType to a constructor for its zero value.
func (r *Registry) Register(eventType string, newEvent func() Event) {
	r.types[eventType] = newEvent
}

func (r *Registry) Known(eventType string) bool {
	_, ok := r.types[eventType]
	return ok
}

// Types lists the registered event types in sorted order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.types))
}

// Decode rebuilds the concrete event stored in raw.
func (r *Registry) Decode(raw RawEvent) (Event, error) {
	newEvent, ok := r.types[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("event %d: unknown type %q", raw.ID, raw.EventType)
	}
	e := newEvent()
	if err := json.Unmarshal([]byte(raw.Payload), e); err != nil {
		return nil, fmt.Errorf("event %d: decode %s payload: %w", raw.ID, raw.EventType, err)
	}
	return e, nil
}

// DefaultRegistry knows every event this module publishes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for typ, newEvent := range map[string]func() Event{
		EventMediaStatusChanged:   func() Event { return &MediaStatusChanged{} },
		EventMediaDemoted:         func() Event { return &MediaDemoted{} },
		EventSeasonDemoted:        func() Event { return &SeasonDemoted{} },
		EventRequestCreated:       func() Event { return &RequestCreated{} },
		EventRequestStatusChanged: func() Event { return &RequestStatusChanged{} },
		EventRequestRemoved:       func() Event { return &RequestRemoved{} },
		EventSubmissionSucceeded:  func() Event { return &SubmissionSucceeded{} },
		EventSubmissionFailed:     func() Event { return &SubmissionFailed{} },
		EventJobStarted:           func() Event { return &JobStarted{} },
		EventJobFinished:          func() Event { return &JobFinished{} },
		EventNotification:         func() Event { return &Notification{} },
	} {
		r.Register(typ, newEvent)
	}
	return r
}
