package runner

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchlab/heavyhitters/src/metrics"
	"github.com/sketchlab/heavyhitters/src/settings"
	stats "github.com/lyft/gostats"
)

func settingsFor(path string) settings.Settings {
	return settings.Settings{
		File:     path,
		Epsilon:  0.05,
		Delta:    0.1,
		Phi:      0.2,
		Universe: 16,
		Seed1:    1,
		Seed2:    1,
	}
}

func writeBinaryFixture(t *testing.T, uids []uint32) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "Weighted-*.bin")
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("#fixture\n")
	require.NoError(t, err)
	for _, u := range uids {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], u)
		_, err := f.Write(b[:])
		require.NoError(t, err)
	}
	return f.Name()
}

func testReporter() *metrics.IngestionReporter {
	store := stats.NewStore(stats.NewNullSink(), false)
	return metrics.NewIngestionReporter(metrics.NewStatsMetricReporter(store.Scope("test")))
}

func TestRunEndToEndCountMin(t *testing.T) {
	uids := make([]uint32, 0, 40)
	for i := 0; i < 30; i++ {
		uids = append(uids, 3)
	}
	for _, u := range []uint32{0, 1, 2, 4, 5, 6, 7, 8, 9, 10} {
		uids = append(uids, u)
	}
	path := writeBinaryFixture(t, uids)

	s := settingsFor(path)
	s.RunMin = true

	log := logrus.New()
	log.SetOutput(bytesDiscard{})

	results, err := Run(s, log, testReporter())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "CountMin", results[0].Name)
	assert.Contains(t, results[0].HeavyHitters, uint32(3))
}

func TestWriteCSVFormatsIPAddresses(t *testing.T) {
	var buf bytes.Buffer
	results := []Result{{Name: "CountMin", HeavyHitters: []uint32{0x0A000001}}}
	require.NoError(t, WriteCSV(&buf, results))
	assert.Contains(t, buf.String(), "CountMin,10.0.0.1,167772161")
}

func TestRunFailsFastOnMalformedRecord(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "NUST-*.txt")
	require.NoError(t, err)
	defer f.Close()

	// Second line is missing fields, an unrecoverable parse failure.
	_, err = f.WriteString("0 0 10.0.0.1 10.0.0.2 80 443 0 6 0 0 0\nbad record\n")
	require.NoError(t, err)

	s := settingsFor(f.Name())
	s.RunMin = true

	log := logrus.New()
	log.SetOutput(bytesDiscard{})

	_, err = Run(s, log, testReporter())
	require.Error(t, err, "a malformed record must abort the run, not be skipped")
}

type bytesDiscard struct{}

func (bytesDiscard) Write(p []byte) (int, error) { return len(p), nil }
