package hh

import (
	"github.com/coocood/freecache"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketch"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// ConstEngine is the sketch-constant HH variant (spec.md §4.3/§4.4): it
// replaces the L per-level independent sketches in Engine with a single
// sketch.ConstCountMin whose counters are partitioned by level, trading a
// little flexibility (count-min only, no count-median) for a single
// contiguous allocation. It exposes the same external contract as Engine
// (Update/Query); callers pick between them via configuration, the HH
// engine's capability client never needs to know which it's driving
// (spec.md §4.4 design note).
type ConstEngine struct {
	cms      *sketch.ConstCountMin
	L        uint32
	phi      float64
	n        int64
	cache    *resultCache
	cacheTTL int
}

// NewConst constructs a ConstEngine over universe cfg.M.
func NewConst(src *rng.Source, cfg Config) (*ConstEngine, error) {
	if cfg.Epsilon >= cfg.Phi {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "epsilon must be < phi", nil)
	}
	if cfg.M == 0 || cfg.M > 1<<32 {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "universe m out of [1, 2^32]", nil)
	}

	family := cfg.HashFamily
	if family == nil {
		family = rng.MultiplyShift
	}

	L := levelCount(cfg.M)
	cms, err := sketch.NewConstCountMin(src, cfg.Epsilon, cfg.Delta, L, family)
	if err != nil {
		return nil, err
	}

	return &ConstEngine{cms: cms, L: L, phi: cfg.Phi}, nil
}

func (e *ConstEngine) prefix(uid uint32, level uint32) uint32 {
	return uid >> (e.L - 1 - level)
}

// Update performs one update(uid, w_i, l) per level against the shared
// structure (spec.md §4.4 "Constant-sketch variant").
func (e *ConstEngine) Update(uid uint32, weight int64) error {
	e.n += absInt64(weight)
	for l := uint32(0); l < e.L; l++ {
		if err := e.cms.Update(int(l), e.prefix(uid, l), weight); err != nil {
			return err
		}
	}
	if e.cache != nil {
		e.cache.invalidate()
	}
	return nil
}

// N returns the total absolute weight ingested so far.
func (e *ConstEngine) N() int64 { return e.n }

// Query performs the same top-down dyadic descent as Engine.Query, reading
// each level's estimate from the shared level-partitioned sketch instead
// of a dedicated per-level sketch.
func (e *ConstEngine) Query() []uint32 {
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
			if float64(e.cms.PointQuery(int(l), p)) >= threshold {
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

// WithResultCache enables query-result memoization, mirroring
// Engine.WithResultCache.
func (e *ConstEngine) WithResultCache(sizeBytes int, ttlSeconds int) *ConstEngine {
	e.cache = &resultCache{store: freecache.NewCache(sizeBytes)}
	e.cacheTTL = ttlSeconds
	return e
}
