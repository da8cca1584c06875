package sketch

import (
	"math"
	"sync"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// layer holds one dyadic level's slice of the flat counter array plus its
// own hash parameters (spec.md §4.3: "Each layer has its own hash
// parameters").
type layer struct {
	width  uint32
	offset uint32
	hashes []rng.Hash
}

// ConstCountMin replaces the HH engine's L independent per-level sketches
// with one sketch whose rows are carved into per-level bands, so total
// counter count is constant across the tree rather than growing with L
// independent allocations (spec.md §4.3). It offers the same operations as
// CountMin/CountMedian, but its Update/PointQuery additionally take a level
// argument, since a single counter array now serves every level; it
// therefore does not satisfy the Sketch interface.
type ConstCountMin struct {
	depth    uint32
	layers   []layer
	counters [][]int64 // counters[row][offset+col]
	mu       sync.RWMutex
}

// NewConstCountMin builds the level-partitioned sketch for a tree of L
// levels, following spec.md §4.3: layer l has width
// w_l = ceil(b / (epsilon * 2^(L-1-l))), rounded up to a power of two, and
// a depth shared by all layers.
func NewConstCountMin(src *rng.Source, epsilon, delta float64, L uint32, family rng.Family) (*ConstCountMin, error) {
	if epsilon <= 0 || epsilon >= 1 {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "epsilon", nil)
	}
	if delta <= 0 || delta >= 1 {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "delta", nil)
	}
	if L == 0 {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "L", nil)
	}

	depth := uint32(math.Ceil(math.Log(1/delta) / math.Log(countMinBase)))
	if depth < 1 {
		depth = 1
	}

	layers := make([]layer, L)
	var offset uint32
	for l := uint32(0); l < L; l++ {
		scaled := epsilon * math.Pow(2, float64(L-1-l))
		w := uint32(math.Ceil(countMinBase / scaled))
		if requiresPow2(family) {
			w = nextPow2(w)
		}
		layers[l] = layer{width: w, offset: offset}
		offset += w
	}

	counters := make([][]int64, depth)
	for r := uint32(0); r < depth; r++ {
		counters[r] = make([]int64, offset)
	}

	for l := range layers {
		layers[l].hashes = make([]rng.Hash, depth)
		for r := uint32(0); r < depth; r++ {
			layers[l].hashes[r] = family.New(src, layers[l].width)
		}
	}

	return &ConstCountMin{depth: depth, layers: layers, counters: counters}, nil
}

// Levels returns the number of dyadic levels this sketch was built for.
func (c *ConstCountMin) Levels() int { return len(c.layers) }

// LayerWidth returns the row width of a given level's band.
func (c *ConstCountMin) LayerWidth(level int) uint32 { return c.layers[level].width }

// Update adds weight to the estimate for prefix p at level, restricted to
// that level's band of rows (spec.md §4.3 "Update(uid, w_i, l)").
func (c *ConstCountMin) Update(level int, p uint32, weight int64) error {
	if weight < 0 {
		return sketcherr.New(sketcherr.InvalidParameter, "weight", nil)
	}
	lay := c.layers[level]

	c.mu.Lock()
	defer c.mu.Unlock()
	for r := uint32(0); r < c.depth; r++ {
		col := lay.hashes[r](p)
		c.counters[r][lay.offset+col] += weight
	}
	return nil
}

// PointQuery returns the minimum over level's rows for prefix p
// (spec.md §4.3 "Point query(p, l)").
func (c *ConstCountMin) PointQuery(level int, p uint32) int64 {
	lay := c.layers[level]

	c.mu.RLock()
	defer c.mu.RUnlock()

	min := int64(math.MaxInt64)
	for r := uint32(0); r < c.depth; r++ {
		col := lay.hashes[r](p)
		if v := c.counters[r][lay.offset+col]; v < min {
			min = v
		}
	}
	return min
}

// Depth returns the shared row count across all layers.
func (c *ConstCountMin) Depth() uint32 { return c.depth }
