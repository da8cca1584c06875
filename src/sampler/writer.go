package sampler

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
)

// WriteConfig bundles the parameters weighted.c's CLI accepts
// (spec.md §6 "Auxiliary weighted-sampler format").
type WriteConfig struct {
	Filename string
	Elements uint32 // N: number of elements carrying mass
	Universe uint32 // m: size of the id universe
	Count    uint64 // how many samples to draw
	Seed1    uint32
	Seed2    uint32
}

// Write draws cfg.Count samples from a weighted population of cfg.Elements
// ids (out of a cfg.Universe-sized id space) and writes the header +
// binary payload format spec.md §6 documents:
//
//	#N, #Universe, #Count, #Filename, #Seed1, #Seed2,
//	#====== Weights ======
//	<one normalised weight per mass-carrying id>
//	<binary payload: cfg.Count little-endian uint32 ids>
func Write(w io.Writer, cfg WriteConfig, weights []float64, ids []uint32, r *rand.Rand) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#N:%d\n", cfg.Elements)
	fmt.Fprintf(bw, "#Universe:%d\n", cfg.Universe)
	fmt.Fprintf(bw, "#Count:%d\n", cfg.Count)
	fmt.Fprintf(bw, "#Filename:%s\n", cfg.Filename)
	fmt.Fprintf(bw, "#Seed1:%d\n", cfg.Seed1)
	fmt.Fprintf(bw, "#Seed2:%d\n", cfg.Seed2)
	fmt.Fprintf(bw, "#====== Weights ======\n")

	var sum float64
	for _, w := range weights {
		sum += w
	}
	for i, id := range ids {
		fmt.Fprintf(bw, "#%d:%f\n", id, weights[i]/sum)
	}

	alias, err := NewAlias(weights)
	if err != nil {
		return err
	}
	var buf [4]byte
	for i := uint64(0); i < cfg.Count; i++ {
		idx := alias.Sample(r)
		binary.LittleEndian.PutUint32(buf[:], ids[idx])
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}

	return bw.Flush()
}
