package stream

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/jpillora/backoff"

	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// defaultChunkSize matches the teacher corpus's stream_set_data_size(1MB)
// call in original_source/src/precision_hh.c.
const defaultChunkSize = 1 << 20

// ChunkReader performs buffered, fixed-size chunked reads over an
// underlying io.Reader, retrying a bounded number of times on transient
// read errors before surfacing an Io error (spec.md §4.5 "The adapter
// performs buffered I/O"). Retry uses an exponential backoff, grounded on
// corpus-wide "retry before surfacing" patterns (the teacher's redis
// client reconnect paths share this shape, via a different backoff
// package scoped to network I/O; here it bounds retries on a local file
// reader's transient errors).
type ChunkReader struct {
	r         io.Reader
	chunkSize int
	backoff   *backoff.Backoff
	maxRetry  int
}

// Open opens path for buffered reading, returning a *sketcherr.Error of
// kind Io on failure.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sketcherr.New(sketcherr.Io, path, err)
	}
	return f, nil
}

// NewChunkReader wraps r with fixed-size chunked reads.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{
		r:         r,
		chunkSize: defaultChunkSize,
		backoff:   &backoff.Backoff{Min: time.Millisecond, Max: 50 * time.Millisecond, Factor: 2},
		maxRetry:  5,
	}
}

// ReadChunk returns the next chunk of bytes, or io.EOF when the underlying
// reader is exhausted. Transient errors (anything other than io.EOF) are
// retried with backoff up to maxRetry times before being wrapped as an
// *sketcherr.Error of kind Io.
func (c *ChunkReader) ReadChunk() ([]byte, error) {
	buf := make([]byte, c.chunkSize)
	attempt := 0

	for {
		n, err := c.r.Read(buf)
		if n > 0 {
			// A later call's transient errors must back off from
			// c.backoff.Min again, not from wherever this incident left
			// off, so reset on every successful read.
			c.backoff.Reset()
			return buf[:n], nil
		}
		if errors.Is(err, io.EOF) {
			c.backoff.Reset()
			return nil, io.EOF
		}
		if err != nil {
			attempt++
			if attempt > c.maxRetry {
				c.backoff.Reset()
				return nil, sketcherr.New(sketcherr.Io, "read_chunk", err)
			}
			time.Sleep(c.backoff.Duration())
			continue
		}
		// n == 0, err == nil is a valid io.Reader response (io.Reader docs);
		// treat it like a transient error so a reader that does this
		// repeatedly still backs off and eventually surfaces an Io error
		// instead of busy-spinning.
		attempt++
		if attempt > c.maxRetry {
			c.backoff.Reset()
			return nil, sketcherr.New(sketcherr.Io, "read_chunk", errors.New("reader made no progress"))
		}
		time.Sleep(c.backoff.Duration())
	}
}
