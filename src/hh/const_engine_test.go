package hh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketch"
)

func TestConstEngineScenarioS1(t *testing.T) {
	src := rng.New(1, 1)
	e, err := NewConst(src, Config{Epsilon: 0.05, Delta: 0.1, Phi: 0.25, M: 16, Variant: sketch.ConstCountMin})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Update(5, 1))
	}
	for _, uid := range []uint32{0, 1, 2, 3, 6, 7, 8, 9} {
		require.NoError(t, e.Update(uid, 1))
	}

	require.EqualValues(t, 18, e.N())
	assert.Equal(t, []uint32{5}, e.Query())
}

func TestConstEngineEmptyStream(t *testing.T) {
	src := rng.New(1, 1)
	e, err := NewConst(src, Config{Epsilon: 0.05, Delta: 0.1, Phi: 0.25, M: 16, Variant: sketch.ConstCountMin})
	require.NoError(t, err)

	assert.Equal(t, int64(0), e.N())
	assert.Empty(t, e.Query())
}

func TestConstEngineResultCache(t *testing.T) {
	src := rng.New(1, 1)
	e, err := NewConst(src, Config{Epsilon: 0.05, Delta: 0.1, Phi: 0.25, M: 16, Variant: sketch.ConstCountMin})
	require.NoError(t, err)
	e = e.WithResultCache(1<<16, 30)

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Update(5, 1))
	}
	first := e.Query()
	second := e.Query()
	assert.Equal(t, first, second)

	require.NoError(t, e.Update(5, 1))
	third := e.Query()
	assert.NotNil(t, third)
}
