package migrate

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schevo/schevo/internal/core/events/bus"
	"github.com/schevo/schevo/internal/core/observability/log"
	"github.com/schevo/schevo/internal/core/schema"
	"github.com/schevo/schevo/internal/core/store"
)

// ErrSchemaUnknown is returned when the source or target version has no
// registered schema.
var ErrSchemaUnknown = errors.New("migrate: schema version not registered")

// RecordError reports that a single record's transform failed. It aborts the
// whole migration: partial success would leave a mixed-version store, and a
// transform failure is a data or code defect to fix, not a condition to retry
// around.
type RecordError struct {
	ID    string
	From  int64
	To    int64
	Cause error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("migrate: record %q failed in step %d->%d: %v", e.ID, e.From, e.To, e.Cause)
}

func (e *RecordError) Unwrap() error { return e.Cause }

// Completed is the bus payload published after a successful migration.
type Completed struct {
	RunID   string
	From    int64
	To      int64
	Records int
	Took    time.Duration
}

// Published is the bus payload emitted when a migrated store goes live.
type Published struct {
	Version int64
	Records int
}

// Migrator replays step chains over whole stores. The source store is never
// touched: every record is deep-copied before its first transform and the
// result lands in a brand-new store.
type Migrator struct {
	schemas *schema.Registry
	steps   *Steps
	logger  *log.Logger
	events  *bus.Bus
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(m *Migrator) { m.logger = l }
}

// WithBus attaches an event bus notified about completed migrations.
func WithBus(b *bus.Bus) Option {
	return func(m *Migrator) { m.events = b }
}

// NewMigrator builds a migrator over the given schema and step registries.
func NewMigrator(schemas *schema.Registry, steps *Steps, opts ...Option) *Migrator {
	m := &Migrator{
		schemas: schemas,
		steps:   steps,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Migrate carries every record of src to target and returns a new store
// tagged with target. Either all records transform and the complete new store
// is returned, or an error is returned and src is untouched. Re-running on
// the same untouched source yields an equal result: transforms are pure and
// the migrator keeps no state between runs.
func (m *Migrator) Migrate(src *store.Store, target int64) (*store.Store, error) {
	if src == nil {
		return nil, fmt.Errorf("migrate: nil source store")
	}
	if _, ok := m.schemas.Get(src.Version()); !ok {
		return nil, fmt.Errorf("%w: source %d", ErrSchemaUnknown, src.Version())
	}
	if _, ok := m.schemas.Get(target); !ok {
		return nil, fmt.Errorf("%w: target %d", ErrSchemaUnknown, target)
	}

	chain, err := m.steps.ChainFrom(src.Version(), target)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	m.logger.Info("migration started",
		zap.String("run_id", runID),
		zap.Int64("from", src.Version()),
		zap.Int64("to", target),
		zap.Int("records", src.Len()),
	)

	out := store.New(target)
	for _, id := range src.IDs() {
		rec, _ := src.Get(id)
		cur := rec.Clone()
		for _, step := range chain {
			next, err := step.Transform(cur)
			if err != nil {
				m.logger.Error("migration aborted",
					zap.String("run_id", runID),
					zap.String("record_id", id),
					zap.Int64("step_from", step.From),
					zap.Error(err),
				)
				return nil, &RecordError{ID: id, From: step.From, To: step.To, Cause: err}
			}
			cur = next
		}
		if err := out.Put(id, cur); err != nil {
			return nil, err
		}
	}

	took := time.Since(started)
	m.logger.Info("migration completed",
		zap.String("run_id", runID),
		zap.Int64("to", target),
		zap.Int("records", out.Len()),
		zap.Duration("took", took),
	)
	if m.events != nil {
		_ = m.events.Publish(bus.NewEvent(bus.TypeMigrationCompleted, "migrator", Completed{
			RunID:   runID,
			From:    src.Version(),
			To:      target,
			Records: out.Len(),
			Took:    took,
		}))
	}
	return out, nil
}

// MigrateLive migrates the holder's current store to target and publishes the
// result in one guarded swap. While the migration runs, readers keep seeing
// the old store; the new one becomes visible only on full success.
func (m *Migrator) MigrateLive(l *store.Live, target int64) error {
	err := l.Swap(func(cur *store.Store) (*store.Store, error) {
		return m.Migrate(cur, target)
	})
	if err != nil {
		return err
	}
	if m.events != nil {
		next := l.Current()
		_ = m.events.Publish(bus.NewEvent(bus.TypeStorePublished, "migrator", Published{
			Version: next.Version(),
			Records: next.Len(),
		}))
	}
	return nil
}
