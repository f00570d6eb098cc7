// Package bus is a small in-process pub/sub used to observe version
// transitions: schema registrations, completed migrations and store swaps.
// Delivery is synchronous in the publisher's goroutine; migrations run inside
// a controlled transition window, so handlers never race the state they
// describe.
package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published by the library.
const (
	TypeSchemaRegistered   = "schema.registered"
	TypeMigrationCompleted = "migration.completed"
	TypeStorePublished     = "store.published"
)

// Event is an immutable notification. Data is an event-type-specific payload
// struct owned by the publisher.
type Event struct {
	Type      string
	Source    string
	Timestamp time.Time
	Data      any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, source string, data any) Event {
	return Event{Type: typ, Source: source, Timestamp: time.Now(), Data: data}
}

// Handler receives events synchronously. Handlers should be quick or offload
// heavy work to avoid blocking publishers.
type Handler func(Event) error

// Subscription is a cancelable handle returned by Subscribe.
type Subscription struct {
	id        string
	eventType string
	cancel    func()
}

func (s *Subscription) ID() string        { return s.id }
func (s *Subscription) EventType() string { return s.eventType }

// Cancel detaches the handler. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}

// Bus fans events out by type.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[string]Handler // event type -> subscription id -> handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string]map[string]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) *Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[string]Handler)
	}
	b.subs[eventType][id] = h
	b.mu.Unlock()

	return &Subscription{
		id:        id,
		eventType: eventType,
		cancel: func() {
			b.mu.Lock()
			delete(b.subs[eventType], id)
			b.mu.Unlock()
		},
	}
}

// Publish delivers the event to every subscriber of its type. Handler errors
// are joined and returned; delivery is not short-circuited.
func (b *Bus) Publish(e Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Type]))
	for _, h := range b.subs[e.Type] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
