package rng

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// xxHashFamily derives a 2-independent-in-practice hash by salting xxhash
// with a per-row seed sampled from the PRNG. It is not part of the spec's
// required hash machinery, but is offered as a drop-in Family for callers
// who want the same seeded-xxhash row construction the teacher's
// Count-Min Sketch uses (src/redis/countmin_sketch.go: cms.hash salts
// xxhash with a per-row seed derived from the row index).
type xxHashFamily struct{}

// XXHashFamily is an optional, non-spec-mandated hash family backed by
// github.com/cespare/xxhash/v2, requiring a power-of-two width.
var XXHashFamily Family = xxHashFamily{}

func (xxHashFamily) Name() string { return "xxhash" }

func (xxHashFamily) New(src *Source, w uint32) Hash {
	if w == 0 || w&(w-1) != 0 {
		panic("rng: xxhash family requires a power-of-two width")
	}
	mask := uint64(w - 1)
	seed := src.Uint64n(1<<63 - 1)

	return func(x uint32) uint32 {
		var buf [12]byte
		binary.LittleEndian.PutUint64(buf[0:8], seed)
		binary.LittleEndian.PutUint32(buf[8:12], x)
		return uint32(xxhash.Sum64(buf[:]) & mask)
	}
}
