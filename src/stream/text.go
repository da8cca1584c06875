package stream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// TextReader decodes newline-delimited, whitespace-separated text records
// (NUST or DARPA, spec.md §6) into (uid, weight=1) pairs, where uid is the
// source IP packed big-endian into a uint32.
//
// It wraps a ChunkReader in a bufio.Scanner; bufio.Scanner already carries
// a split-line across internal buffer refills, which is the Go-idiomatic
// equivalent of spec.md §4.5's "256-byte stash for line fragment" — the
// stash is an implementation detail of the original C reader, not an
// externally observable contract, so resynchronisation is delegated to
// the standard library's scanner instead of hand-rolled.
type TextReader struct {
	scanner *bufio.Scanner
	format  Format
}

// NewTextReader wraps a ChunkReader as a TextReader for the given format
// (NUST or DARPA).
func NewTextReader(chunks *ChunkReader, format Format) *TextReader {
	s := bufio.NewScanner(&chunkReaderAdapter{chunks: chunks})
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	return &TextReader{scanner: s, format: format}
}

// chunkReaderAdapter lets bufio.Scanner pull from a ChunkReader as a plain
// io.Reader, reusing ChunkReader's retry/backoff semantics for transient
// errors.
type chunkReaderAdapter struct {
	chunks  *ChunkReader
	pending []byte
}

func (a *chunkReaderAdapter) Read(p []byte) (int, error) {
	if len(a.pending) == 0 {
		chunk, err := a.chunks.ReadChunk()
		if err != nil {
			return 0, err
		}
		a.pending = chunk
	}
	n := copy(p, a.pending)
	a.pending = a.pending[n:]
	return n, nil
}

// ReadNext returns the next record's uid, or io.EOF when the stream is
// exhausted.
func (t *TextReader) ReadNext() (uint32, error) {
	for {
		if !t.scanner.Scan() {
			if err := t.scanner.Err(); err != nil {
				return 0, sketcherr.New(sketcherr.Io, "scan", err)
			}
			return 0, io.EOF
		}
		line := strings.TrimSpace(t.scanner.Text())
		if line == "" {
			continue
		}
		return t.parseLine(line)
	}
}

func (t *TextReader) parseLine(line string) (uint32, error) {
	fields := strings.Fields(line)

	switch t.format {
	case NUST:
		// timestamp size srcIP dstIP srcPort dstPort flags proto direction type random
		if len(fields) < 11 {
			return 0, sketcherr.New(sketcherr.InputFormat, "NUST record: insufficient fields", nil)
		}
		return ipToUID(fields[2])
	case DARPA:
		// id date time duration serv srcPort dstPort srcIP dstIP attack_score attack_name
		if len(fields) < 11 {
			return 0, sketcherr.New(sketcherr.InputFormat, "DARPA record: insufficient fields", nil)
		}
		return ipToUID(fields[7])
	default:
		return 0, sketcherr.New(sketcherr.InvalidParameter, "unknown text format", nil)
	}
}

// ipToUID packs a dotted-quad IPv4 address big-endian into a uint32
// (spec.md §6: "uid used by the core is the source IP packed big-endian").
func ipToUID(dotted string) (uint32, error) {
	ip := net.ParseIP(dotted)
	if ip == nil {
		return 0, sketcherr.New(sketcherr.InputFormat, fmt.Sprintf("malformed IP %q", dotted), nil)
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, sketcherr.New(sketcherr.InputFormat, fmt.Sprintf("not an IPv4 address %q", dotted), nil)
	}
	return binary.BigEndian.Uint32(v4), nil
}
