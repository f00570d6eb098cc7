// Package store holds versioned in-memory record state. A Store is owned by
// exactly one API surface at a time; migrations build a brand-new Store and
// the Live holder swaps it in atomically.
package store

import (
	"errors"

	"github.com/schevo/schevo/pkg/sequence"
)

// ErrEmptyID is returned when a record is put under an empty identifier.
var ErrEmptyID = errors.New("store: empty record id")

// Record is one schema-shaped instance. Values are plain Go scalars, nested
// maps and slices; conformance is checked at the schema level, not here.
type Record map[string]any

// Clone returns a deep copy of the record. Nested maps and slices are copied
// so a transform mutating its input can never reach the source store.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, nv := range t {
			out[k] = cloneValue(nv)
		}
		return out
	case Record:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, nv := range t {
			out[i] = cloneValue(nv)
		}
		return out
	default:
		return v
	}
}

// Store maps record ids to records, tagged with the schema version every
// record in it satisfies.
type Store struct {
	version int64
	records map[string]Record
}

// New returns an empty store tagged with version.
func New(version int64) *Store {
	return &Store{version: version, records: make(map[string]Record)}
}

// Version returns the schema version this store is tagged with.
func (s *Store) Version() int64 { return s.version }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Put inserts or replaces the record under id.
func (s *Store) Put(id string, rec Record) error {
	if id == "" {
		return ErrEmptyID
	}
	s.records[id] = rec
	return nil
}

// Get returns the record stored under id. The returned record is the live
// instance; callers holding the store may mutate it.
func (s *Store) Get(id string) (Record, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// Delete removes the record under id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	_, ok := s.records[id]
	delete(s.records, id)
	return ok
}

// IDs returns every record id in ascending order.
func (s *Store) IDs() []string {
	return sequence.SortedKeys(s.records)
}

// Clone returns a deep copy of the store under the same version tag.
func (s *Store) Clone() *Store {
	out := New(s.version)
	for id, rec := range s.records {
		out.records[id] = rec.Clone()
	}
	return out
}
