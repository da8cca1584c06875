package sketch

import (
	"sort"
	"sync"

	"github.com/sketchlab/heavyhitters/src/rng"
)

// countMedianBase is the base in w = ceil(b/epsilon) for count-median
// (spec.md §3, "base b=4").
const countMedianBase = 4.0

// CountMedian is a count-median sketch: each row additionally carries a
// sign hash projecting items to {-1,+1}; updates accumulate
// sign(x)*weight per row, and the point query is the median of the
// signed row estimates. Unlike CountMin, negative weights are accepted
// (spec.md §4.2, §8 scenario S4), which is what lets this variant support
// the "insert then retract" pattern the count-min variant cannot.
type CountMedian struct {
	dims     Dims
	hashes   []rng.Hash
	signs    []rng.SignHash
	counters [][]int64
	mu       sync.RWMutex
}

// NewCountMedian constructs a count-median sketch from (epsilon, delta)
// and a hash family. Depth is forced odd so a unique median exists.
func NewCountMedian(src *rng.Source, epsilon, delta float64, family rng.Family) (*CountMedian, error) {
	dims, err := deriveDims(epsilon, delta, countMedianBase, family, true)
	if err != nil {
		return nil, err
	}
	return newCountMedianWithDims(src, dims, family)
}

// NewCountMedianFixed constructs a count-median sketch with explicit
// width/depth. depth is forced odd.
func NewCountMedianFixed(src *rng.Source, width, depth uint32, family rng.Family) (*CountMedian, error) {
	dims, err := FixedDims(width, depth)
	if err != nil {
		return nil, err
	}
	if dims.Depth%2 == 0 {
		dims.Depth++
	}
	return newCountMedianWithDims(src, dims, family)
}

func newCountMedianWithDims(src *rng.Source, dims Dims, family rng.Family) (*CountMedian, error) {
	cm := &CountMedian{
		dims:     dims,
		hashes:   make([]rng.Hash, dims.Depth),
		signs:    make([]rng.SignHash, dims.Depth),
		counters: make([][]int64, dims.Depth),
	}
	for j := uint32(0); j < dims.Depth; j++ {
		cm.hashes[j] = family.New(src, dims.Width)
		cm.signs[j] = rng.NewSignHash(src)
		cm.counters[j] = make([]int64, dims.Width)
	}
	return cm, nil
}

// Update implements Sketch. Both signs of weight are valid.
func (cm *CountMedian) Update(x uint32, weight int64) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for j, h := range cm.hashes {
		cm.counters[j][h(x)] += cm.signs[j](x) * weight
	}
	return nil
}

// PointQuery implements Sketch: median of sign(x)*C[j][h_j(x)] across rows.
func (cm *CountMedian) PointQuery(x uint32) int64 {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if len(cm.hashes) == 0 {
		return 0
	}
	estimates := make([]int64, len(cm.hashes))
	for j, h := range cm.hashes {
		estimates[j] = cm.signs[j](x) * cm.counters[j][h(x)]
	}
	sort.Slice(estimates, func(i, k int) bool { return estimates[i] < estimates[k] })
	return estimates[len(estimates)/2]
}

func (cm *CountMedian) Width() uint32 { return cm.dims.Width }
func (cm *CountMedian) Depth() uint32 { return cm.dims.Depth }

var _ Sketch = (*CountMedian)(nil)
