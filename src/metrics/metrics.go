package metrics

import "time"

// ingestionMetrics holds the counters/timers for one sketch variant's
// ingestion + query pass, adapted from the teacher's serverMetrics (which
// wrapped gRPC unary calls). There is no RPC surface in this core, so the
// equivalent "one call" is "ingest the stream, then run one query" for a
// given sketch variant.
type ingestionMetrics struct {
	recordsProcessed  Counter
	parseErrors       Counter
	heavyHittersFound Counter
	ingestTime        Timer
	queryTime         Timer
}

// IngestionReporter reports per-variant ingestion/query metrics, the
// stream-processing analogue of the teacher's ServerReporter (which
// reported gRPC unary-call metrics via a server.Server).
type IngestionReporter struct {
	reporter MetricReporter
}

func newIngestionMetrics(reporter MetricReporter, variant string) *ingestionMetrics {
	return &ingestionMetrics{
		recordsProcessed:  reporter.NewCounter(variant + ".records_processed"),
		parseErrors:       reporter.NewCounter(variant + ".parse_errors"),
		heavyHittersFound: reporter.NewCounter(variant + ".heavy_hitters_found"),
		ingestTime:        reporter.NewTimer(variant + ".ingest_time"),
		queryTime:         reporter.NewTimer(variant + ".query_time"),
	}
}

// NewIngestionReporter returns an IngestionReporter backed by reporter.
func NewIngestionReporter(reporter MetricReporter) *IngestionReporter {
	return &IngestionReporter{reporter: reporter}
}

// Ingest instruments fn, a full stream-ingestion pass recorded under the
// given name (src/runner runs one pass shared by every variant and names it
// "stream"), recording records processed, parse errors, and wall time.
func (r *IngestionReporter) Ingest(variant string, fn func() (records int64, parseErrs int64, err error)) error {
	m := newIngestionMetrics(r.reporter, variant)
	start := time.Now()
	records, parseErrs, err := fn()
	m.ingestTime.AddValue(float64(time.Since(start).Milliseconds()))
	m.recordsProcessed.Add(uint64(records))
	m.parseErrors.Add(uint64(parseErrs))
	return err
}

// Query instruments fn, one HH query pass for the named sketch variant,
// recording the heavy-hitter count and wall time.
func (r *IngestionReporter) Query(variant string, fn func() []uint32) []uint32 {
	m := newIngestionMetrics(r.reporter, variant)
	start := time.Now()
	result := fn()
	m.queryTime.AddValue(float64(time.Since(start).Milliseconds()))
	m.heavyHittersFound.Add(uint64(len(result)))
	return result
}
