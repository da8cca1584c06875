// Package hh implements the dyadic hierarchical heavy-hitter engine
// (spec.md §4.4): a tree of L = ceil(log2(m)) levels over the universe
// [0, m), each level backed by a point-frequency sketch, turning those
// point oracles into a threshold query via top-down descent.
package hh

import (
	"math/bits"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketch"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// Config bundles the parameters needed to construct an Engine.
type Config struct {
	// Epsilon is the additive error bound; must be < Phi.
	Epsilon float64
	// Delta is the failure probability.
	Delta float64
	// Phi is the heavy-hitter threshold fraction.
	Phi float64
	// M is the universe size, items are drawn from [0, M).
	M uint64
	// Variant selects which per-level sketch implementation to build.
	Variant sketch.Variant
	// HashFamily selects the 2-independent hash family used by every
	// level's sketch. Defaults to rng.MultiplyShift if zero-valued.
	HashFamily rng.Family
	// Width/Height, when both non-zero, bypass the epsilon/delta
	// dimension derivation (spec.md §9 open question) and are handed
	// directly to every level's sketch built by New. NewConst ignores
	// them: its layer widths and depth are always derived from
	// Epsilon/Delta.
	Width, Height uint32
}

// Engine is the hierarchical heavy-hitter detector. It maintains one
// independent sketch per dyadic level (spec.md §4.4 "independent
// variant"); see ConstEngine for the level-partitioned single-sketch
// variant (§4.3/§4.4).
type Engine struct {
	levels   []sketch.Sketch
	L        uint32
	m        uint64
	phi      float64
	n        int64
	cache    *resultCache
	cacheTTL int
}

// levelCount computes L = ceil(log2(m)), spec.md §3.
func levelCount(m uint64) uint32 {
	if m <= 1 {
		return 1
	}
	return uint32(bits.Len64(m - 1))
}

// New constructs an Engine from cfg, sampling all per-level hash
// parameters from src. Construction rejects epsilon >= phi
// (spec.md §4.4, §7 InvalidParameter).
func New(src *rng.Source, cfg Config) (*Engine, error) {
	if cfg.Epsilon >= cfg.Phi {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "epsilon must be < phi", nil)
	}
	if cfg.M == 0 || cfg.M > 1<<32 {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "universe m out of [1, 2^32]", nil)
	}
	if cfg.Variant == sketch.ConstCountMin {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "ConstCountMin variant requires NewConst, not New", nil)
	}

	family := cfg.HashFamily
	if family == nil {
		family = rng.MultiplyShift
	}

	L := levelCount(cfg.M)
	// Error budget split uniformly across levels so the final additive
	// error stays <= epsilon*N (spec.md §4.4 "Construction").
	epsilonPerLevel := cfg.Epsilon / float64(L)

	levels := make([]sketch.Sketch, L)
	for l := uint32(0); l < L; l++ {
		s, err := newLevelSketch(src, cfg, epsilonPerLevel, family)
		if err != nil {
			return nil, err
		}
		levels[l] = s
	}

	return &Engine{levels: levels, L: L, m: cfg.M, phi: cfg.Phi}, nil
}

func newLevelSketch(src *rng.Source, cfg Config, epsilonPerLevel float64, family rng.Family) (sketch.Sketch, error) {
	useFixed := cfg.Width != 0 && cfg.Height != 0

	switch cfg.Variant {
	case sketch.CountMedian:
		if useFixed {
			return sketch.NewCountMedianFixed(src, cfg.Width, cfg.Height, family)
		}
		return sketch.NewCountMedian(src, epsilonPerLevel, cfg.Delta, family)
	default: // CountMin; ConstCountMin is rejected by New before reaching here
		if useFixed {
			return sketch.NewCountMinFixed(src, cfg.Width, cfg.Height, family)
		}
		return sketch.NewCountMin(src, epsilonPerLevel, cfg.Delta, family)
	}
}

// prefix returns the (l+1)-bit prefix of uid at level l, i.e.
// uid >> (L-1-l) (spec.md §3).
func (e *Engine) prefix(uid uint32, level uint32) uint32 {
	return uid >> (e.L - 1 - level)
}

// Update feeds one (uid, weight) pair through every level
// (spec.md §4.4, O(L*d) hot path).
func (e *Engine) Update(uid uint32, weight int64) error {
	e.n += absInt64(weight)
	for l := uint32(0); l < e.L; l++ {
		p := e.prefix(uid, l)
		if err := e.levels[l].Update(p, weight); err != nil {
			return err
		}
	}
	if e.cache != nil {
		e.cache.invalidate()
	}
	return nil
}

// N returns the total absolute weight ingested so far.
func (e *Engine) N() int64 { return e.n }

// Query performs the top-down dyadic descent (spec.md §4.4): starting from
// the two 1-bit prefixes, at each level a candidate survives if its
// estimate is >= phi*N, and both of its children are pushed to the next
// level. Surviving leaves at level L-1 are reported as heavy hitters.
func (e *Engine) Query() []uint32 {
	if e.n == 0 {
		return nil
	}
	if e.cache != nil {
		if cached, ok := e.cache.get(); ok {
			return cached
		}
	}

	threshold := e.phi * float64(e.n)
	candidates := []uint32{0, 1}

	for l := uint32(0); l < e.L; l++ {
		next := make([]uint32, 0, len(candidates)*2)
		for _, p := range candidates {
			if float64(e.levels[l].PointQuery(p)) >= threshold {
				if l == e.L-1 {
					next = append(next, p)
				} else {
					next = append(next, 2*p, 2*p+1)
				}
			}
		}
		candidates = next
	}

	if e.cache != nil {
		e.cache.put(candidates, e.cacheTTL)
	}
	return candidates
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// DimsForTest exposes per-level width/depth, used only by tests that need
// to assert on derived dimensions.
func (e *Engine) DimsForTest(level int) (width, depth uint32) {
	return e.levels[level].Width(), e.levels[level].Depth()
}
