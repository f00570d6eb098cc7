// Package migrate carries record state across schema versions: a registry of
// pure per-step transforms forming one linear chain, and a migrator that
// replays the chain over a whole store, all or nothing.
package migrate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/schevo/schevo/internal/core/store"
)

var (
	// ErrStepSkipsVersion is returned when a step's target is not exactly
	// its source plus one.
	ErrStepSkipsVersion = errors.New("migrate: step must target the next version")
	// ErrStepRedefined is returned when a step for a source version is
	// registered twice.
	ErrStepRedefined = errors.New("migrate: step already registered")
	// ErrNilTransform is returned when a step is registered without a
	// transform function.
	ErrNilTransform = errors.New("migrate: nil transform")
)

// NoPathError reports that the chain from From to To has a gap: no step is
// registered for version Missing.
type NoPathError struct {
	From    int64
	To      int64
	Missing int64
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("migrate: no path from %d to %d: missing step %d->%d",
		e.From, e.To, e.Missing, e.Missing+1)
}

// Transform maps a record satisfying one version's schema to a record
// satisfying the next version's schema. Transforms must be pure: same input,
// same output, no hidden state.
type Transform func(store.Record) (store.Record, error)

// Step is one registered link of the chain.
type Step struct {
	From      int64
	To        int64
	Transform Transform
}

// Steps holds at most one step per source version. Registered steps form a
// single linear chain; skipping and redefinition are rejected.
type Steps struct {
	mu     sync.RWMutex
	byFrom map[int64]Step
}

// NewSteps returns an empty step registry.
func NewSteps() *Steps {
	return &Steps{byFrom: make(map[int64]Step)}
}

// Register adds the transform carrying records from version `from` to
// version `to`. `to` must be `from+1`.
func (s *Steps) Register(from, to int64, fn Transform) error {
	if fn == nil {
		return fmt.Errorf("%w: step %d->%d", ErrNilTransform, from, to)
	}
	if to != from+1 {
		return fmt.Errorf("%w: got %d->%d", ErrStepSkipsVersion, from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byFrom[from]; exists {
		return fmt.Errorf("%w: %d->%d", ErrStepRedefined, from, to)
	}
	s.byFrom[from] = Step{From: from, To: to, Transform: fn}
	return nil
}

// ChainFrom returns the ordered steps carrying records from version `from`
// to version `to`. An empty chain is returned when from == to. Any gap fails
// with a NoPathError naming the first missing step.
func (s *Steps) ChainFrom(from, to int64) ([]Step, error) {
	if to < from {
		return nil, &NoPathError{From: from, To: to, Missing: to}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := make([]Step, 0, to-from)
	for v := from; v < to; v++ {
		step, ok := s.byFrom[v]
		if !ok {
			return nil, &NoPathError{From: from, To: to, Missing: v}
		}
		chain = append(chain, step)
	}
	return chain, nil
}
