// Package sampler implements the weighted alias-method sampler described
// in spec.md §1 and §6 as an external collaborator: a standalone utility
// used offline to generate synthetic test streams with a known frequency
// distribution, excluded from the core sketch/HH engine. It is grounded on
// _examples/original_source/datasets/Weighted/src/weighted.c, which builds
// this exact table (via its "alias.h") and serialises it to the binary
// format spec.md §6 documents "for completeness".
package sampler

import (
	"math/rand"

	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// Alias is Vose's alias method table: after an O(n) build, Sample draws
// a weighted index in O(1).
type Alias struct {
	prob  []float64
	alias []int
}

// NewAlias builds an alias table from weights, which need not sum to 1;
// they are normalised internally. Returns an InvalidParameter error if
// weights is empty or its sum is not positive, since dividing by a
// zero/negative sum would silently poison every entry with NaN or a
// negative probability instead of failing.
func NewAlias(weights []float64) (*Alias, error) {
	n := len(weights)
	prob := make([]float64, n)
	alias := make([]int, n)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	if n == 0 || sum <= 0 {
		return nil, sketcherr.New(sketcherr.InvalidParameter, "alias weights must be non-empty and sum to a positive value", nil)
	}

	scaled := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		scaled[i] = w * float64(n) / sum
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		prob[s] = scaled[s]
		alias[s] = l

		scaled[l] = scaled[l] + scaled[s] - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	for _, l := range large {
		prob[l] = 1
	}
	for _, s := range small {
		prob[s] = 1
	}

	return &Alias{prob: prob, alias: alias}, nil
}

// Sample draws one weighted index using r as the source of randomness.
func (a *Alias) Sample(r *rand.Rand) int {
	n := len(a.prob)
	i := r.Intn(n)
	if r.Float64() < a.prob[i] {
		return i
	}
	return a.alias[i]
}

// Len returns the number of elements the table was built over.
func (a *Alias) Len() int { return len(a.prob) }
