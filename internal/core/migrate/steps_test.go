package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevo/schevo/internal/core/store"
)

func identity(rec store.Record) (store.Record, error) { return rec, nil }

func TestRegisterRejectsSkip(t *testing.T) {
	s := NewSteps()
	err := s.Register(1, 3, identity)
	assert.ErrorIs(t, err, ErrStepSkipsVersion)

	err = s.Register(2, 1, identity)
	assert.ErrorIs(t, err, ErrStepSkipsVersion)
}

func TestRegisterRejectsRedefinition(t *testing.T) {
	s := NewSteps()
	require.NoError(t, s.Register(1, 2, identity))
	assert.ErrorIs(t, s.Register(1, 2, identity), ErrStepRedefined)
}

func TestRegisterRejectsNilTransform(t *testing.T) {
	s := NewSteps()
	assert.ErrorIs(t, s.Register(1, 2, nil), ErrNilTransform)
}

func TestChainFrom(t *testing.T) {
	s := NewSteps()
	require.NoError(t, s.Register(1, 2, identity))
	require.NoError(t, s.Register(2, 3, identity))
	require.NoError(t, s.Register(3, 4, identity))

	chain, err := s.ChainFrom(1, 4)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.EqualValues(t, 1, chain[0].From)
	assert.EqualValues(t, 3, chain[2].From)
	assert.EqualValues(t, 4, chain[2].To)
}

func TestChainFromSameVersionIsEmpty(t *testing.T) {
	s := NewSteps()
	chain, err := s.ChainFrom(2, 2)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestChainFromGap(t *testing.T) {
	s := NewSteps()
	require.NoError(t, s.Register(1, 2, identity))
	require.NoError(t, s.Register(3, 4, identity))

	_, err := s.ChainFrom(1, 4)
	var np *NoPathError
	require.ErrorAs(t, err, &np)
	assert.EqualValues(t, 2, np.Missing)
	assert.Contains(t, np.Error(), "2->3")
}

func TestChainFromDowngrade(t *testing.T) {
	s := NewSteps()
	require.NoError(t, s.Register(1, 2, identity))

	_, err := s.ChainFrom(2, 1)
	var np *NoPathError
	assert.ErrorAs(t, err, &np)
}
