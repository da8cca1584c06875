package metrics

import (
	"errors"
	"testing"

	stats "github.com/lyft/gostats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReporter() *IngestionReporter {
	store := stats.NewStore(stats.NewNullSink(), false)
	return NewIngestionReporter(NewStatsMetricReporter(store.Scope("test")))
}

func TestIngestionReporterIngestPropagatesCountsAndError(t *testing.T) {
	store := stats.NewStore(stats.NewNullSink(), false)
	scope := store.Scope("test")
	r := NewIngestionReporter(NewStatsMetricReporter(scope))
	wantErr := errors.New("boom")

	err := r.Ingest("countmin", func() (int64, int64, error) {
		return 10, 2, wantErr
	})

	assert.Equal(t, wantErr, err)
	assert.EqualValues(t, 10, scope.NewCounter("countmin.records_processed").Value())
	assert.EqualValues(t, 2, scope.NewCounter("countmin.parse_errors").Value())
}

func TestIngestionReporterIngestSucceeds(t *testing.T) {
	r := testReporter()
	err := r.Ingest("countmin", func() (int64, int64, error) {
		return 5, 0, nil
	})
	require.NoError(t, err)
}

func TestIngestionReporterQueryReturnsUnderlyingResult(t *testing.T) {
	r := testReporter()
	got := r.Query("countmin", func() []uint32 { return []uint32{1, 2, 3} })
	assert.Equal(t, []uint32{1, 2, 3}, got)
}
