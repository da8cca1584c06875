// Package settings defines the driver's configuration surface, following
// the teacher's src/settings package: a flat struct populated by
// envconfig, overridable by CLI flags (spec.md §6). Grounded on
// test/integration/integration_test.go's
// envconfig.Process("UNLIKELY_PREFIX_", &s) usage in the teacher corpus.
package settings

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/sketch"
)

// Settings holds every tunable of a heavy-hitter run. Fields mirror
// spec.md §6's CLI surface one-to-one; the `envconfig` tags let every flag
// be set via an HH_-prefixed environment variable as well, matching the
// teacher's dual CLI-flag/env-var configuration model.
type Settings struct {
	File string `envconfig:"FILE"`

	Epsilon float64 `envconfig:"EPSILON" default:"0.015625"` // 1/64
	Delta   float64 `envconfig:"DELTA" default:"0.25"`
	Phi     float64 `envconfig:"PHI" default:"0.05"`

	Universe uint64 `envconfig:"UNIVERSE" default:"4294967295"` // 2^32-1

	Width  uint32 `envconfig:"WIDTH" default:"0"`
	Height uint32 `envconfig:"HEIGHT" default:"0"`

	RunMin    bool `envconfig:"RUN_MIN" default:"false"`
	RunMedian bool `envconfig:"RUN_MEDIAN" default:"false"`
	RunConst  bool `envconfig:"RUN_CONST" default:"false"`

	Seed1 uint32 `envconfig:"SEED1" default:"1"`
	Seed2 uint32 `envconfig:"SEED2" default:"1"`

	// ResultCacheEnabled/Bytes/TTL configure the optional freecache-backed
	// query memoization layer (src/hh.WithResultCache), an ambient
	// performance knob not named by spec.md.
	ResultCacheEnabled bool          `envconfig:"RESULT_CACHE_ENABLED" default:"false"`
	ResultCacheBytes   int           `envconfig:"RESULT_CACHE_BYTES" default:"1048576"`
	ResultCacheTTL     time.Duration `envconfig:"RESULT_CACHE_TTL" default:"1s"`

	// StatsBackend selects the metrics.MetricReporter implementation:
	// "stats" (lyft/gostats, default) or "prometheus".
	StatsBackend string `envconfig:"STATS_BACKEND" default:"stats"`
}

// FromEnv loads Settings from HH_-prefixed environment variables, applying
// the defaults above for anything unset.
func FromEnv() (Settings, error) {
	var s Settings
	if err := envconfig.Process("HH", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Variants returns the set of sketch variants the run should execute,
// defaulting to all three when none were explicitly selected
// (spec.md §6: "if none given, run all three").
func (s Settings) Variants() []sketch.Variant {
	var out []sketch.Variant
	if s.RunMin {
		out = append(out, sketch.CountMin)
	}
	if s.RunMedian {
		out = append(out, sketch.CountMedian)
	}
	if s.RunConst {
		out = append(out, sketch.ConstCountMin)
	}
	if len(out) == 0 {
		return []sketch.Variant{sketch.CountMin, sketch.CountMedian, sketch.ConstCountMin}
	}
	return out
}

// HashFamily is fixed to multiply-shift, the spec's recommended default
// (spec.md §4.1), for every run; it is not exposed as a flag because the
// CLI surface in spec.md §6 does not name one.
func (s Settings) HashFamily() rng.Family { return rng.MultiplyShift }
