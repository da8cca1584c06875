// Command hhsample generates a synthetic weighted item stream in the
// binary format src/sampler writes, for use as HH engine test fixtures
// (spec.md §6 "Auxiliary weighted-sampler format").
package main

import (
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/sketchlab/heavyhitters/src/sampler"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

func main() {
	var cfg sampler.WriteConfig
	var seedRand int64
	var out string

	root := &cobra.Command{
		Use:   "hhsample",
		Short: "Generate a weighted synthetic item stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, seedRand, out)
		},
	}

	flags := root.Flags()
	flags.StringVar(&out, "out", "", "output file (required)")
	flags.StringVar(&cfg.Filename, "name", "Weighted", "#Filename: header value")
	flags.Uint32Var(&cfg.Elements, "elements", 100, "number of mass-carrying ids")
	flags.Uint32Var(&cfg.Universe, "universe", 4294967295, "id universe size m")
	flags.Uint64Var(&cfg.Count, "count", 100000, "number of samples to draw")
	flags.Uint32Var(&cfg.Seed1, "seed1", 1, "first PRNG seed, written to the header")
	flags.Uint32Var(&cfg.Seed2, "seed2", 1, "second PRNG seed, written to the header")
	flags.Int64Var(&seedRand, "rand-seed", 1, "math/rand seed driving the sampling draws")

	_ = root.MarkFlagRequired("out")

	if err := root.Execute(); err != nil {
		os.Exit(sketcherr.ExitCode(err))
	}
}

func run(cfg sampler.WriteConfig, seedRand int64, out string) error {
	if cfg.Universe == 0 {
		return sketcherr.New(sketcherr.InvalidParameter, "universe must be > 0", nil)
	}
	if cfg.Elements > cfg.Universe {
		return sketcherr.New(sketcherr.InvalidParameter, "elements must be <= universe", nil)
	}

	f, err := os.Create(out)
	if err != nil {
		return sketcherr.New(sketcherr.Io, out, err)
	}
	defer f.Close()

	ids, weights := zipfian(cfg.Elements, cfg.Universe, seedRand)

	r := rand.New(rand.NewSource(seedRand))
	// sampler.Write buffers internally; writing straight to f avoids a
	// redundant second bufio layer.
	if err := sampler.Write(f, cfg, weights, ids, r); err != nil {
		return sketcherr.New(sketcherr.Io, out, err)
	}
	return nil
}

// zipfian generates `elements` distinct ids drawn uniformly from
// [0, universe) and assigns them Zipf-distributed weights, matching
// original_source/datasets/Zipfian's id/weight generation shape (spec.md
// §4 "Supplemented features").
func zipfian(elements, universe uint32, seedRand int64) ([]uint32, []float64) {
	r := rand.New(rand.NewSource(seedRand))
	seen := make(map[uint32]bool, elements)
	ids := make([]uint32, 0, elements)
	for uint32(len(ids)) < elements {
		id := r.Uint32() % universe
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	weights := make([]float64, elements)
	for i := range weights {
		weights[i] = 1.0 / float64(i+1)
	}
	return ids, weights
}
