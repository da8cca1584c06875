package hh

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketch"
)

func newTestEngine(t *testing.T, m uint64, phi, epsilon, delta float64) *Engine {
	t.Helper()
	src := rng.New(1, 1)
	e, err := New(src, Config{Epsilon: epsilon, Delta: delta, Phi: phi, M: m, Variant: sketch.CountMin})
	require.NoError(t, err)
	return e
}

// TestScenarioS1 is spec.md §8 S1: m=16 (L=4), ten copies of uid=5, one each
// of {0,1,2,3,6,7,8,9}, N=18, phi=0.25. Expected result: {5}.
func TestScenarioS1(t *testing.T) {
	e := newTestEngine(t, 16, 0.25, 0.05, 0.1)

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Update(5, 1))
	}
	for _, uid := range []uint32{0, 1, 2, 3, 6, 7, 8, 9} {
		require.NoError(t, e.Update(uid, 1))
	}

	require.EqualValues(t, 18, e.N())
	assert.Equal(t, []uint32{5}, e.Query())
}

// TestScenarioS3 is spec.md §8 S3: the same multiset fed in two different
// orders must produce identical query results.
func TestScenarioS3(t *testing.T) {
	stream := []uint32{5, 0, 5, 1, 5, 2, 5, 3, 5, 6, 5, 7, 5, 8, 5, 9, 5, 5}
	reversed := make([]uint32, len(stream))
	for i, uid := range stream {
		reversed[len(stream)-1-i] = uid
	}

	run := func(order []uint32) []uint32 {
		e := newTestEngine(t, 16, 0.25, 0.05, 0.1)
		for _, uid := range order {
			require.NoError(t, e.Update(uid, 1))
		}
		return e.Query()
	}

	a := run(stream)
	b := run(reversed)

	sortUint32(a)
	sortUint32(b)
	if diff := cmp.Diff(a, b, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("query result differs by feed order (-forward +reversed):\n%s", diff)
	}
}

// TestScenarioS7 is spec.md §8 S7: uid=0 and uid=m-1 are both representable
// and correctly located at the leaf level.
func TestScenarioS7(t *testing.T) {
	e := newTestEngine(t, 16, 0.25, 0.05, 0.1)
	for i := 0; i < 10; i++ {
		require.NoError(t, e.Update(0, 1))
		require.NoError(t, e.Update(15, 1))
	}

	got := e.Query()
	sortUint32(got)
	assert.Equal(t, []uint32{0, 15}, got)
}

// TestScenarioS8 is spec.md §8 S8: an empty stream returns an empty set and
// N=0.
func TestScenarioS8(t *testing.T) {
	e := newTestEngine(t, 16, 0.25, 0.05, 0.1)
	assert.Equal(t, int64(0), e.N())
	assert.Empty(t, e.Query())
}

// TestHHSoundness is spec.md §8 property 5: every returned item has
// f-hat(x) >= phi*N.
func TestHHSoundness(t *testing.T) {
	e := newTestEngine(t, 256, 0.1, 0.01, 0.1)

	for i := 0; i < 200000; i++ {
		require.NoError(t, e.Update(42, 1))
	}
	for i := 0; i < 800000; i++ {
		require.NoError(t, e.Update(uint32(i%256), 1))
	}

	threshold := 0.1 * float64(e.N())
	for _, uid := range e.Query() {
		p := e.prefix(uid, e.L-1)
		assert.GreaterOrEqual(t, float64(e.levels[e.L-1].PointQuery(p)), threshold)
	}
}

// TestScenarioS2 is spec.md §8 S2: m=256, epsilon=0.01, delta=0.1, phi=0.1,
// uid=42 appears 200,000 times out of 1e6, rest uniform. Expected: {42}.
func TestScenarioS2(t *testing.T) {
	e := newTestEngine(t, 256, 0.1, 0.01, 0.1)

	for i := 0; i < 200000; i++ {
		require.NoError(t, e.Update(42, 1))
	}
	for i := 0; i < 800000; i++ {
		require.NoError(t, e.Update(uint32(1+i%255), 1))
	}

	got := e.Query()
	assert.Equal(t, []uint32{42}, got)
}

func TestEpsilonMustBeLessThanPhi(t *testing.T) {
	src := rng.New(1, 1)
	_, err := New(src, Config{Epsilon: 0.2, Delta: 0.1, Phi: 0.1, M: 16, Variant: sketch.CountMin})
	assert.Error(t, err)
}

func TestNewRejectsConstCountMinVariant(t *testing.T) {
	src := rng.New(1, 1)
	_, err := New(src, Config{Epsilon: 0.05, Delta: 0.1, Phi: 0.25, M: 16, Variant: sketch.ConstCountMin})
	assert.Error(t, err, "ConstCountMin must go through NewConst, not silently build CountMin sketches")
}

func sortUint32(s []uint32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
