package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentAndPublish(t *testing.T) {
	v1 := New(1)
	l := NewLive(v1)
	assert.Same(t, v1, l.Current())

	v2 := New(2)
	require.NoError(t, l.Publish(v2))
	assert.Same(t, v2, l.Current())

	assert.ErrorIs(t, l.Publish(nil), ErrNilStore)
}

func TestSwapPublishesOnlyOnSuccess(t *testing.T) {
	v1 := New(1)
	require.NoError(t, v1.Put("1", Record{"name": "fred"}))
	l := NewLive(v1)

	boom := errors.New("boom")
	err := l.Swap(func(cur *Store) (*Store, error) {
		assert.Same(t, v1, cur)
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Same(t, v1, l.Current(), "failed swap must leave the old store published")

	err = l.Swap(func(cur *Store) (*Store, error) {
		next := cur.Clone()
		return next, nil
	})
	require.NoError(t, err)
	assert.NotSame(t, v1, l.Current())

	// A reader that grabbed the old store before the swap still owns a
	// fully usable reference.
	rec, ok := v1.Get("1")
	require.True(t, ok)
	assert.Equal(t, "fred", rec["name"])
}

func TestSwapRejectsNilResult(t *testing.T) {
	l := NewLive(New(1))
	err := l.Swap(func(cur *Store) (*Store, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNilStore)
}
