package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	s := New(1)
	assert.EqualValues(t, 1, s.Version())
	assert.Zero(t, s.Len())

	require.NoError(t, s.Put("1", Record{"id": "1", "name": "fred"}))
	rec, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "fred", rec["name"])

	assert.True(t, s.Delete("1"))
	assert.False(t, s.Delete("1"))
	_, ok = s.Get("1")
	assert.False(t, ok)
}

func TestPutEmptyID(t *testing.T) {
	s := New(1)
	assert.ErrorIs(t, s.Put("", Record{}), ErrEmptyID)
}

func TestIDsSorted(t *testing.T) {
	s := New(1)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(id, Record{}))
	}
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
}

func TestRecordCloneIsDeep(t *testing.T) {
	rec := Record{
		"name": "fred",
		"addr": map[string]any{"city": "berlin"},
		"tags": []any{"a", "b"},
	}
	c := rec.Clone()
	c["name"] = "joe"
	c["addr"].(map[string]any)["city"] = "paris"
	c["tags"].([]any)[0] = "z"

	assert.Equal(t, "fred", rec["name"])
	assert.Equal(t, "berlin", rec["addr"].(map[string]any)["city"])
	assert.Equal(t, "a", rec["tags"].([]any)[0])
}

func TestStoreCloneIndependent(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Put("1", Record{"n": 1}))

	c := s.Clone()
	assert.EqualValues(t, 2, c.Version())

	rec, _ := c.Get("1")
	rec["n"] = 99
	require.NoError(t, c.Put("2", Record{}))

	orig, _ := s.Get("1")
	assert.Equal(t, 1, orig["n"])
	assert.Equal(t, 1, s.Len())
}
