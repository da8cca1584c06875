package stream

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBinaryPayload(header string, uids []uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	for _, u := range uids {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], u)
		buf.Write(b[:])
	}
	return buf.Bytes()
}

// TestScenarioS6 is spec.md §8 S6: two header lines plus 8 little-endian
// uint32s must yield exactly 8 updates with the correct uids.
func TestScenarioS6(t *testing.T) {
	uids := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	data := buildBinaryPayload("#first header\n#second header\n", uids)

	br := NewBinaryReader(NewChunkReader(bytes.NewReader(data)))

	var got []uint32
	for {
		uid, err := br.ReadNext()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, uid)
	}

	assert.Equal(t, uids, got)
}

func TestBinaryReaderNoHeader(t *testing.T) {
	uids := []uint32{10, 20}
	data := buildBinaryPayload("", uids)

	br := NewBinaryReader(NewChunkReader(bytes.NewReader(data)))

	var got []uint32
	for {
		uid, err := br.ReadNext()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, uid)
	}
	assert.Equal(t, uids, got)
}

func TestBinaryReaderTruncatedRecordErrors(t *testing.T) {
	data := buildBinaryPayload("#h\n", []uint32{1})
	data = data[:len(data)-1] // drop the last byte of the last uid

	br := NewBinaryReader(NewChunkReader(bytes.NewReader(data)))

	_, err := br.ReadNext()
	assert.Error(t, err)
}

func TestBinaryReaderEmptyPayload(t *testing.T) {
	br := NewBinaryReader(NewChunkReader(bytes.NewReader(nil)))
	_, err := br.ReadNext()
	assert.ErrorIs(t, err, io.EOF)
}
