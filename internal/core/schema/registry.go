package schema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/schevo/schevo/internal/core/events/bus"
)

var (
	// ErrDuplicateVersion is returned when a version number is registered twice.
	ErrDuplicateVersion = errors.New("schema: duplicate version")
	// ErrOutOfOrderVersion is returned when versions are not registered in
	// strictly increasing order.
	ErrOutOfOrderVersion = errors.New("schema: version out of order")
	// ErrEmptyRegistry is returned by Latest on a registry with no versions.
	ErrEmptyRegistry = errors.New("schema: no versions registered")
)

// Registered is the bus payload published when a schema version lands.
type Registered struct {
	Name        string
	Version     int64
	Fingerprint uint64
}

// Registry holds the ordered sequence of schema versions for one record type
// lineage. Registration is append-only; registered schemas are never mutated.
type Registry struct {
	mu      sync.RWMutex
	ordered []*Schema
	byVers  map[int64]*Schema
	events  *bus.Bus
}

// Option configures a Registry.
type Option func(*Registry)

// WithBus attaches an event bus notified about registered versions.
func WithBus(b *bus.Bus) Option {
	return func(r *Registry) { r.events = b }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{byVers: make(map[int64]*Schema)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a schema version. Versions must arrive in strictly
// increasing order; a duplicate or lower version is a caller bug and fails.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("schema: register nil schema")
	}
	r.mu.Lock()
	if _, exists := r.byVers[s.Version()]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDuplicateVersion, s.Version())
	}
	if n := len(r.ordered); n > 0 && s.Version() < r.ordered[n-1].Version() {
		last := r.ordered[n-1].Version()
		r.mu.Unlock()
		return fmt.Errorf("%w: %d registered after %d", ErrOutOfOrderVersion, s.Version(), last)
	}
	r.ordered = append(r.ordered, s)
	r.byVers[s.Version()] = s
	r.mu.Unlock()

	if r.events != nil {
		_ = r.events.Publish(bus.NewEvent(bus.TypeSchemaRegistered, "registry", Registered{
			Name:        s.Name(),
			Version:     s.Version(),
			Fingerprint: s.Fingerprint(),
		}))
	}
	return nil
}

// Get returns the schema registered under version.
func (r *Registry) Get(version int64) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byVers[version]
	return s, ok
}

// Latest returns the highest registered version.
func (r *Registry) Latest() (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.ordered) == 0 {
		return nil, ErrEmptyRegistry
	}
	return r.ordered[len(r.ordered)-1], nil
}

// Versions returns every registered version number in registration order.
func (r *Registry) Versions() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, len(r.ordered))
	for i, s := range r.ordered {
		out[i] = s.Version()
	}
	return out
}

// Len returns the number of registered versions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
