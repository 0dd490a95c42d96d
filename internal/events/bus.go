package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Publisher is the part of the bus used by services that emit events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Notify(ctx context.Context, n Notification)
}

// subscription is one subscriber channel. An empty eventType receives
// every event.
type subscription struct {
	eventType string
	ch        chan Event
}

func (s *subscription) wants(eventType string) bool {
	return s.eventType == "" || s.eventType == eventType
}

// Bus fans events out to in-process subscribers and appends them to the
// event log. Delivery never blocks the publisher: a full subscriber misses
// the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	log    *EventLog // nil disables persistence
	logger *slog.Logger
	onDrop func(eventType string)
	closed bool
}

// NewBus creates a new event bus. log may be nil.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		log:    log,
		logger: logger.With("component", "events"),
	}
}

// OnDrop registers a callback invoked whenever a full subscriber channel
// causes an event to be dropped. Must be called before Publish.
func (b *Bus) OnDrop(fn func(eventType string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = fn
}

// Publish persists e and hands it to every matching subscriber.
// Persistence failures are logged; delivery still happens.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	var targets []chan Event
	for _, s := range b.subs {
		if s.wants(e.EventType()) {
			targets = append(targets, s.ch)
		}
	}
	onDrop := b.onDrop

	if b.log != nil {
		if _, err := b.log.Append(e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "entity_id", e.EntityID(), "error", err)
		}
	}

	// Sends happen under the read lock so Close can't close a channel mid-send.
	for _, ch := range targets {
		select {
		case ch <- e:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
			if onDrop != nil {
				onDrop(e.EventType())
			}
		}
	}
	b.mu.RUnlock()
	return nil
}

// Subscribe returns a channel for events of one type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	return b.subscribe(eventType, bufferSize)
}

// SubscribeAll returns a channel that receives every event.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	return b.subscribe("", bufferSize)
}

func (b *Bus) subscribe(eventType string, bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, &subscription{eventType: eventType, ch: ch})
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s *subscription) bool { return s.ch == ch })
	if i < 0 {
		return
	}
	close(b.subs[i].ch)
	b.subs = slices.Delete(b.subs, i, i+1)
}

// Close stops delivery and closes every subscriber channel. Publish after
// Close is a no-op.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
