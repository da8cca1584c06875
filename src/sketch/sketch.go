// Package sketch implements the frequency sketch family: count-min,
// count-median, and the level-partitioned constant-count-min variant
// (spec.md §4.2, §4.3). All three are 2-independent-hash-family frequency
// oracles over a fixed, pre-allocated counter matrix.
package sketch

import (
	"math"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// Sketch is the capability every frequency-sketch implementation exposes
// to the HH engine (spec.md §9, "Dynamic dispatch over sketch variant" —
// modelled here as an interface rather than a C vtable of function
// pointers). The engine is parametric over this capability and never
// inspects which concrete variant it is driving.
type Sketch interface {
	// Update adds weight to the estimate for x. count-min rejects
	// negative weight; count-median accepts it.
	Update(x uint32, weight int64) error
	// PointQuery returns the current frequency estimate for x.
	PointQuery(x uint32) int64
	// Width returns the row width (number of columns per row).
	Width() uint32
	// Depth returns the row count.
	Depth() uint32
}

// Variant names the three interchangeable sketch implementations spec.md
// describes, used by the CLI to select which to run.
type Variant int

const (
	CountMin Variant = iota
	CountMedian
	ConstCountMin
)

func (v Variant) String() string {
	switch v {
	case CountMin:
		return "min"
	case CountMedian:
		return "median"
	case ConstCountMin:
		return "const"
	default:
		return "unknown"
	}
}

// nextPow2 rounds n up to the next power of two (n itself if already one).
func nextPow2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// requiresPow2 reports whether a hash family needs a power-of-two width.
func requiresPow2(f rng.Family) bool {
	switch f {
	case rng.MultiplyShift, rng.Mersenne31Pow2, rng.XXHashFamily:
		return true
	default:
		return false
	}
}

// Dims holds the derived row width/depth for a sketch, and whether they
// were derived from (epsilon, delta) or supplied directly by the caller
// (spec.md §9, "--width/--height overrides" open question: when supplied
// directly the probabilistic accuracy contract is no longer guaranteed by
// this package, only by the caller's own choice).
type Dims struct {
	Width    uint32
	Depth    uint32
	Derived  bool
	Epsilon  float64
	Delta    float64
}

// deriveDims computes w = ceil(b/epsilon), d = ceil(log_b(1/delta)),
// rounding w up to a power of two if the hash family requires it. oddDepth
// forces d to the next odd value, required by count-median so a unique
// median exists.
func deriveDims(epsilon, delta, b float64, f rng.Family, oddDepth bool) (Dims, error) {
	if epsilon <= 0 || epsilon >= 1 {
		return Dims{}, sketcherr.New(sketcherr.InvalidParameter, "epsilon", nil)
	}
	if delta <= 0 || delta >= 1 {
		return Dims{}, sketcherr.New(sketcherr.InvalidParameter, "delta", nil)
	}

	w := uint32(math.Ceil(b / epsilon))
	if requiresPow2(f) {
		w = nextPow2(w)
	}

	d := uint32(math.Ceil(math.Log(1/delta) / math.Log(b)))
	if d < 1 {
		d = 1
	}
	if oddDepth && d%2 == 0 {
		d++
	}

	return Dims{Width: w, Depth: d, Derived: true, Epsilon: epsilon, Delta: delta}, nil
}

// FixedDims builds a Dims from caller-supplied width/depth, bypassing the
// epsilon/delta derivation entirely.
func FixedDims(width, depth uint32) (Dims, error) {
	if width == 0 {
		return Dims{}, sketcherr.New(sketcherr.InvalidParameter, "width", nil)
	}
	if depth == 0 {
		return Dims{}, sketcherr.New(sketcherr.InvalidParameter, "depth", nil)
	}
	return Dims{Width: width, Depth: depth}, nil
}
