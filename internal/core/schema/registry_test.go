package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevo/schevo/internal/core/events/bus"
)

func mustSchema(t *testing.T, version int64, fields ...Field) *Schema {
	t.Helper()
	if fields == nil {
		fields = []Field{{Name: "id", Kind: String}}
	}
	s, err := New("person", version, fields)
	require.NoError(t, err)
	return s
}

func TestRegisterOrdered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustSchema(t, 1)))
	require.NoError(t, r.Register(mustSchema(t, 2)))
	require.NoError(t, r.Register(mustSchema(t, 3)))

	assert.Equal(t, []int64{1, 2, 3}, r.Versions())
	assert.Equal(t, 3, r.Len())
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustSchema(t, 1)))

	err := r.Register(mustSchema(t, 1))
	assert.ErrorIs(t, err, ErrDuplicateVersion)
}

func TestRegisterOutOfOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustSchema(t, 2)))

	err := r.Register(mustSchema(t, 1))
	assert.ErrorIs(t, err, ErrOutOfOrderVersion)
}

func TestRegisterNil(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustSchema(t, 1)))

	s, ok := r.Get(1)
	require.True(t, ok)
	assert.EqualValues(t, 1, s.Version())

	_, ok = r.Get(9)
	assert.False(t, ok)
}

func TestRegisterNotifiesBus(t *testing.T) {
	b := bus.New()
	var got []Registered
	b.Subscribe(bus.TypeSchemaRegistered, func(e bus.Event) error {
		got = append(got, e.Data.(Registered))
		return nil
	})

	r := NewRegistry(WithBus(b))
	s := mustSchema(t, 1)
	require.NoError(t, r.Register(s))

	require.Len(t, got, 1)
	assert.Equal(t, "person", got[0].Name)
	assert.EqualValues(t, 1, got[0].Version)
	assert.Equal(t, s.Fingerprint(), got[0].Fingerprint)

	// Failed registrations stay silent.
	require.Error(t, r.Register(mustSchema(t, 1)))
	assert.Len(t, got, 1)
}

func TestLatest(t *testing.T) {
	r := NewRegistry()
	_, err := r.Latest()
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	require.NoError(t, r.Register(mustSchema(t, 1)))
	require.NoError(t, r.Register(mustSchema(t, 5)))

	s, err := r.Latest()
	require.NoError(t, err)
	assert.EqualValues(t, 5, s.Version())
}
