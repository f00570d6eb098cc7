package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevo/schevo/internal/core/store"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	defer db.Close()

	st := store.New(3)
	require.NoError(t, st.Put("1", store.Record{"id": "1", "name": "fred", "age": float64(23)}))
	require.NoError(t, st.Put("2", store.Record{"id": "2", "name": "joe", "tags": []any{"a"}}))

	require.NoError(t, Save(ctx, db, st))

	loaded, err := Load(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 3, loaded.Version())
	assert.Equal(t, 2, loaded.Len())

	rec, ok := loaded.Get("1")
	require.True(t, ok)
	assert.Equal(t, "fred", rec["name"])
	assert.Equal(t, float64(23), rec["age"])
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	defer db.Close()

	v1 := store.New(1)
	require.NoError(t, v1.Put("old", store.Record{"id": "old"}))
	require.NoError(t, Save(ctx, db, v1))

	v2 := store.New(2)
	require.NoError(t, v2.Put("new", store.Record{"id": "new"}))
	require.NoError(t, Save(ctx, db, v2))

	loaded, err := Load(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loaded.Version())
	assert.Equal(t, []string{"new"}, loaded.IDs())
}

func TestLoadWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = Load(ctx, db)
	assert.Error(t, err)
}
