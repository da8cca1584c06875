package rng

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bigMersenneMod computes (a*x+b) mod (2^31-1) using math/big as ground
// truth, independent of the folding trick mersenneFast implements.
func bigMersenneMod(a, b, x uint64) uint32 {
	p := big.NewInt(mersenneP)
	v := new(big.Int).Mul(big.NewInt(0).SetUint64(a), big.NewInt(0).SetUint64(x))
	v.Add(v, big.NewInt(0).SetUint64(b))
	v.Mod(v, p)
	return uint32(v.Uint64())
}

func TestMersenneFastMatchesBigIntModForFullRangeX(t *testing.T) {
	// a, b drawn near the top of [0, p) and x drawn near the top of the
	// full uint32 range: a*x exceeds p^2/2^31 by enough that a single
	// fold-and-subtract under-reduces (the bug this test guards against).
	cases := []struct{ a, b, x uint64 }{
		{a: mersenneP - 2, b: 0, x: 0xFFFFFFFF},
		{a: mersenneP - 1, b: mersenneP - 1, x: 0xFFFFFFFF},
		{a: 1, b: 0, x: 0xFFFFFFFF},
		{a: 12345, b: 67890, x: 0x80000001},
		{a: mersenneP / 2, b: mersenneP / 3, x: 0x7FFFFFFF},
	}
	for _, c := range cases {
		got := mersenneFast(c.a, c.b, c.x)
		want := bigMersenneMod(c.a, c.b, c.x)
		assert.Equal(t, want, got, "a=%d b=%d x=%d", c.a, c.b, c.x)
	}
}

func TestMersenneFastResultIsAlwaysBelowP(t *testing.T) {
	src := New(1, 1)
	for i := 0; i < 1000; i++ {
		a := uint64(1 + src.Uint64n(mersenneP-2))
		b := uint64(src.Uint64n(mersenneP - 1))
		x := src.Uint64n(1 << 32)
		got := mersenneFast(a, b, x)
		require.Less(t, got, uint32(mersenneP))
	}
}

func TestMersenne31HashStaysWithinWidth(t *testing.T) {
	src := New(2, 3)
	const w = 1000
	h := Mersenne31.New(src, w)
	for _, x := range []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF} {
		v := h(x)
		assert.Less(t, v, uint32(w))
	}
}
