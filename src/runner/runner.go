// Package runner wires the stream adapter, the HH engines, and metrics
// together into the end-to-end run spec.md §6 describes: read a file,
// ingest every record into one engine per selected variant, then print
// each variant's heavy hitters as CSV rows. It plays the role of
// original_source/src/precision_hh.c's main(), generalized to Go's
// capability-interface style the way the teacher's src/server wires a
// Server out of its component interfaces.
package runner

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sketchlab/heavyhitters/src/hh"
	"github.com/sketchlab/heavyhitters/src/metrics"
	"github.com/sketchlab/heavyhitters/src/rng"
	"github.com/sketchlab/heavyhitters/src/settings"
	"github.com/sketchlab/heavyhitters/src/sketch"
	"github.com/sketchlab/heavyhitters/src/sketcherr"
	"github.com/sketchlab/heavyhitters/src/stream"
)

// variantEngine is the capability both Engine and ConstEngine satisfy,
// letting Run drive either without a type switch on the hot ingestion
// path (spec.md §4.4 "the HH engine's capability client never needs to
// know which it's driving").
type variantEngine interface {
	Update(uid uint32, weight int64) error
	N() int64
	Query() []uint32
}

// recordReader is the capability both stream.BinaryReader and
// stream.TextReader satisfy.
type recordReader interface {
	ReadNext() (uint32, error)
}

// Result holds one variant's heavy-hitter query result, keyed by the
// CSV "Implementation" column name spec.md §6 specifies.
type Result struct {
	Name         string
	HeavyHitters []uint32
}

// Run executes the full pipeline for s: open the file, detect its format
// from the file name, feed every record into one engine per
// s.Variants(), then return each variant's query result. log receives
// per-stage progress; reporter receives ingestion/query metrics.
func Run(s settings.Settings, logger *logrus.Logger, reporter *metrics.IngestionReporter) ([]Result, error) {
	runID := uuid.New()
	log := logger.WithField("run_id", runID.String())

	f, err := stream.Open(s.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format, explicit := stream.DetectFormat(s.File)
	if !explicit {
		log.WithField("file", s.File).Warn("format not recognized from filename, defaulting to binary")
	}

	src := rng.New(s.Seed1, s.Seed2)
	family := s.HashFamily()

	variants := s.Variants()
	engines := make(map[sketch.Variant]variantEngine, len(variants))
	for _, v := range variants {
		cfg := hh.Config{
			Epsilon:    s.Epsilon,
			Delta:      s.Delta,
			Phi:        s.Phi,
			M:          s.Universe,
			Variant:    v,
			HashFamily: family,
			Width:      s.Width,
			Height:     s.Height,
		}

		var e variantEngine
		if v == sketch.ConstCountMin {
			ce, err := hh.NewConst(src, cfg)
			if err != nil {
				return nil, err
			}
			if s.ResultCacheEnabled {
				ce.WithResultCache(s.ResultCacheBytes, int(s.ResultCacheTTL.Seconds()))
			}
			e = ce
		} else {
			ee, err := hh.New(src, cfg)
			if err != nil {
				return nil, err
			}
			if s.ResultCacheEnabled {
				ee.WithResultCache(s.ResultCacheBytes, int(s.ResultCacheTTL.Seconds()))
			}
			e = ee
		}
		engines[v] = e
	}

	reader, err := newRecordReader(f, format)
	if err != nil {
		return nil, err
	}

	// A parse error on any record is fatal for the run (spec.md §7: "no
	// skip-on-error", matching precision_hh.c's xerror()+exit() on a bad
	// NUST/DARPA record). parseErrs still counts the single failure that
	// ended the run, for the ingestion metrics; the log line below is only
	// reached when ingestion succeeds.
	var records, parseErrs int64
	err = reporter.Ingest("stream", func() (int64, int64, error) {
		for {
			uid, rerr := reader.ReadNext()
			if rerr == io.EOF {
				return records, parseErrs, nil
			}
			if rerr != nil {
				if sketchErr, ok := rerr.(*sketcherr.Error); ok && sketchErr.Kind == sketcherr.InputFormat {
					parseErrs++
				}
				return records, parseErrs, rerr
			}
			records++
			for _, e := range engines {
				if uerr := e.Update(uid, 1); uerr != nil {
					return records, parseErrs, uerr
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"records": records, "parse_errors": parseErrs}).Info("ingestion complete")

	ctx := context.Background()
	results := make([]Result, 0, len(variants))
	for _, v := range variants {
		e := engines[v]
		hitters := reporter.Query(variantName(v), func() []uint32 { return queryTraced(ctx, e) })
		results = append(results, Result{Name: variantName(v), HeavyHitters: hitters})
	}
	return results, nil
}

// queryTraced runs a traced query descent when e supports it (hh.Engine's
// independent-sketch variant), falling back to a plain Query for
// hh.ConstEngine, which has no QueryTraced counterpart.
func queryTraced(ctx context.Context, e variantEngine) []uint32 {
	if t, ok := e.(interface{ QueryTraced(context.Context) []uint32 }); ok {
		return t.QueryTraced(ctx)
	}
	return e.Query()
}

func newRecordReader(f io.Reader, format stream.Format) (recordReader, error) {
	chunks := stream.NewChunkReader(f)
	switch format {
	case stream.NUST, stream.DARPA:
		return stream.NewTextReader(chunks, format), nil
	default:
		return stream.NewBinaryReader(chunks), nil
	}
}

func variantName(v sketch.Variant) string {
	switch v {
	case sketch.CountMin:
		return "CountMin"
	case sketch.CountMedian:
		return "CountMedian"
	case sketch.ConstCountMin:
		return "ConstCountMin"
	default:
		return "Unknown"
	}
}

// WriteCSV writes results in the "Implementation,IP-Address,Index" format
// spec.md §6 names, converting each uid back to a dotted-quad IPv4
// address for the IP-Address column while the Index column carries the
// uid itself, matching precision_hh.c:543-544's
// printf("...,%u\n", hitters->hitters[i]) (the id, not its position in
// the result slice).
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"Implementation", "IP-Address", "Index"}); err != nil {
		return err
	}
	for _, r := range results {
		for _, uid := range r.HeavyHitters {
			if err := cw.Write([]string{r.Name, uidToIP(uid), fmt.Sprintf("%d", uid)}); err != nil {
				return err
			}
		}
	}
	return nil
}

func uidToIP(uid uint32) string {
	ip := net.IPv4(byte(uid>>24), byte(uid>>16), byte(uid>>8), byte(uid))
	return ip.String()
}

// WriteBanner emits the "#m:/#delta:/#epsilon:/#phi:/#seed1:/#seed2:"
// parameter banner spec.md §6 requires, ahead of the CSV body.
func WriteBanner(w io.Writer, s settings.Settings) error {
	_, err := fmt.Fprintf(w, "#m:%d\n#delta:%g\n#epsilon:%g\n#phi:%g\n#seed1:%d\n#seed2:%d\n",
		s.Universe, s.Delta, s.Epsilon, s.Phi, s.Seed1, s.Seed2)
	return err
}
