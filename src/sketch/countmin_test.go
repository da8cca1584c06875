package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchlab/heavyhitters/src/rng"
)

func TestCountMinOneSidedError(t *testing.T) {
	src := rng.New(1, 1)
	cm, err := NewCountMin(src, 0.05, 0.2, rng.MultiplyShift)
	require.NoError(t, err)

	exact := map[uint32]int64{}
	items := []uint32{1, 2, 2, 3, 3, 3, 4, 4, 4, 4}
	for _, x := range items {
		require.NoError(t, cm.Update(x, 1))
		exact[x]++
	}

	for x, f := range exact {
		assert.GreaterOrEqualf(t, cm.PointQuery(x), f, "count-min must never underestimate x=%d", x)
	}
}

func TestCountMinRejectsNegativeWeight(t *testing.T) {
	src := rng.New(1, 1)
	cm, err := NewCountMin(src, 0.1, 0.2, rng.MultiplyShift)
	require.NoError(t, err)

	err = cm.Update(5, -1)
	assert.Error(t, err)
}

func TestCountMinEmptyReturnsZero(t *testing.T) {
	src := rng.New(1, 1)
	cm, err := NewCountMin(src, 0.1, 0.2, rng.MultiplyShift)
	require.NoError(t, err)

	assert.Equal(t, int64(0), cm.PointQuery(42))
}

func TestCountMinOrderIndependence(t *testing.T) {
	build := func(order []uint32) int64 {
		src := rng.New(7, 9)
		cm, err := NewCountMin(src, 0.05, 0.2, rng.MultiplyShift)
		require.NoError(t, err)
		for _, x := range order {
			require.NoError(t, cm.Update(x, 1))
		}
		return cm.PointQuery(3)
	}

	forward := []uint32{1, 2, 3, 3, 2, 1, 3}
	backward := []uint32{3, 1, 2, 3, 3, 2, 1}

	assert.Equal(t, build(forward), build(backward))
}

func TestCountMinRequiresPowerOfTwoWidthForMultiplyShift(t *testing.T) {
	src := rng.New(1, 1)
	_, err := NewCountMinFixed(src, 100, 3, rng.Mersenne31)
	require.NoError(t, err) // h31 tolerates non-power-of-two widths

	assert.Panics(t, func() {
		_, _ = NewCountMinFixed(src, 100, 3, rng.MultiplyShift)
	})
}

func TestCountMinFixedDims(t *testing.T) {
	src := rng.New(1, 1)
	cm, err := NewCountMinFixed(src, 128, 4, rng.MultiplyShift)
	require.NoError(t, err)
	assert.EqualValues(t, 128, cm.Width())
	assert.EqualValues(t, 4, cm.Depth())
}
