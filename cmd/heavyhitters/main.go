// Command heavyhitters runs one or more hierarchical heavy-hitter sketches
// over an input stream and prints the heavy-hitting ids found by each,
// per spec.md §6.
package main

import (
	"context"
	"os"
	"time"

	"github.com/lyft/gostats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/sketchlab/heavyhitters/src/metrics"
	"github.com/sketchlab/heavyhitters/src/runner"
	"github.com/sketchlab/heavyhitters/src/settings"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

func main() {
	log := logrus.New()

	// No exporter is wired up: the in-process SDK provider is enough to
	// make src/hh.QueryTraced's spans real (sampled, with a resource and
	// an actual span context) instead of the no-op default otel.Tracer
	// falls back to, without pulling in a collector dependency this CLI
	// has no use for.
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)

	// Load HH_-prefixed env vars first so CLI flags layer on top of them:
	// a flag's default below is the env-derived value, and cobra only
	// overwrites it if the user actually passes the flag.
	s, err := settings.FromEnv()
	if err != nil {
		log.WithError(err).Error("loading settings from environment")
		os.Exit(sketcherr.ExitCode(err))
	}
	resultCacheTTLSeconds := int(s.ResultCacheTTL / time.Second)

	root := &cobra.Command{
		Use:   "heavyhitters",
		Short: "Hierarchical heavy-hitter detection over a record stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.File == "" {
				return sketcherr.New(sketcherr.InvalidParameter, "--file (or HH_FILE) is required", nil)
			}
			s.ResultCacheTTL = time.Duration(resultCacheTTLSeconds) * time.Second
			return run(s, log)
		},
	}

	flags := root.Flags()
	flags.StringVar(&s.File, "file", s.File, "input stream file (required)")
	flags.Float64Var(&s.Epsilon, "epsilon", s.Epsilon, "additive error bound")
	flags.Float64Var(&s.Delta, "delta", s.Delta, "failure probability")
	flags.Float64Var(&s.Phi, "phi", s.Phi, "heavy-hitter threshold fraction")
	flags.Uint64Var(&s.Universe, "universe", s.Universe, "id universe size m")
	flags.Uint32Var(&s.Width, "width", s.Width, "fixed sketch width (overrides epsilon derivation when set with --height)")
	flags.Uint32Var(&s.Height, "height", s.Height, "fixed sketch depth (overrides delta derivation when set with --width)")
	flags.BoolVar(&s.RunMin, "min", s.RunMin, "run the count-min variant")
	flags.BoolVar(&s.RunMedian, "median", s.RunMedian, "run the count-median variant")
	flags.BoolVar(&s.RunConst, "const", s.RunConst, "run the constant-count-min variant")
	flags.Uint32Var(&s.Seed1, "seed1", s.Seed1, "first PRNG seed")
	flags.Uint32Var(&s.Seed2, "seed2", s.Seed2, "second PRNG seed")
	flags.BoolVar(&s.ResultCacheEnabled, "result-cache", s.ResultCacheEnabled, "enable query-result memoization")
	flags.IntVar(&s.ResultCacheBytes, "result-cache-bytes", s.ResultCacheBytes, "query-result cache size in bytes")
	flags.IntVar(&resultCacheTTLSeconds, "result-cache-ttl-seconds", resultCacheTTLSeconds, "query-result cache TTL in seconds")
	flags.StringVar(&s.StatsBackend, "stats-backend", s.StatsBackend, "metrics backend: stats or prometheus")

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("run failed")
		os.Exit(sketcherr.ExitCode(err))
	}
}

func run(s settings.Settings, log *logrus.Logger) error {
	reporter := newReporter(s)

	results, err := runner.Run(s, log, metrics.NewIngestionReporter(reporter))
	if err != nil {
		return err
	}

	if err := runner.WriteBanner(os.Stdout, s); err != nil {
		return sketcherr.New(sketcherr.Io, "stdout", err)
	}
	if err := runner.WriteCSV(os.Stdout, results); err != nil {
		return sketcherr.New(sketcherr.Io, "stdout", err)
	}
	return nil
}

func newReporter(s settings.Settings) metrics.MetricReporter {
	if s.StatsBackend == "prometheus" {
		return metrics.NewPrometheusMetricReporter(prometheus.NewRegistry(), "heavyhitters")
	}
	store := stats.NewStore(stats.NewNullSink(), false)
	return metrics.NewStatsMetricReporter(store.Scope("heavyhitters"))
}
