package stream

import (
	"encoding/binary"
	"io"

	"github.com/sketchlab/heavyhitters/src/sketcherr"
)

// BinaryReader decodes the binary item-stream format (spec.md §6): zero or
// more '#'-prefixed ASCII header lines, then a tightly-packed sequence of
// little-endian uint32 uids, weight implicitly 1.
//
// Header handling resolves spec.md §9's open question ("header parsing in
// binary mode"): it treats the header as ASCII lines up to the first
// non-'#' line, resynchronising across chunk boundaries byte by byte, with
// no attempt at bug-compatibility with the original's chunk-boundary
// handling.
type BinaryReader struct {
	chunks *ChunkReader

	buf        []byte // current chunk
	pos        int    // read cursor into buf
	stash      [4]byte
	stashLen   int
	headerDone bool
	eof        bool
}

// NewBinaryReader wraps a ChunkReader as a BinaryReader.
func NewBinaryReader(chunks *ChunkReader) *BinaryReader {
	return &BinaryReader{chunks: chunks}
}

// fill refills buf from the chunk source when exhausted. Returns false at
// true EOF.
func (b *BinaryReader) fill() bool {
	if b.eof {
		return false
	}
	chunk, err := b.chunks.ReadChunk()
	if err != nil {
		b.eof = true
		return false
	}
	b.buf = chunk
	b.pos = 0
	return true
}

func (b *BinaryReader) nextByte() (byte, bool) {
	for b.pos >= len(b.buf) {
		if !b.fill() {
			return 0, false
		}
	}
	c := b.buf[b.pos]
	b.pos++
	return c, true
}

// skipHeader consumes '#'-prefixed lines up to (and including) the first
// line that does not start with '#'.
func (b *BinaryReader) skipHeader() error {
	for {
		c, ok := b.nextByte()
		if !ok {
			return io.EOF
		}
		if c != '#' {
			// Not a header line: this byte is the first byte of the
			// payload, push it back so ReadNext sees it.
			b.pushback()
			return nil
		}
		// consume rest of this '#' line
		for {
			d, ok := b.nextByte()
			if !ok {
				return io.EOF
			}
			if d == '\n' {
				break
			}
		}
	}
}

// pushback rewinds the cursor by one byte, undoing the last nextByte()
// call so ReadNext sees that byte again. Only ever called immediately
// after the nextByte() call it undoes, so the rewind is always valid,
// whether or not that call just refilled buf from a new chunk.
func (b *BinaryReader) pushback() {
	b.pos--
}

// ReadNext returns the next uid, or io.EOF when the payload is exhausted.
func (b *BinaryReader) ReadNext() (uint32, error) {
	if !b.headerDone {
		if err := b.skipHeader(); err != nil {
			return 0, err
		}
		b.headerDone = true
	}

	for b.stashLen < 4 {
		c, ok := b.nextByte()
		if !ok {
			if b.stashLen == 0 {
				return 0, io.EOF
			}
			return 0, sketcherr.New(sketcherr.InputFormat, "truncated binary record", nil)
		}
		b.stash[b.stashLen] = c
		b.stashLen++
	}

	uid := binary.LittleEndian.Uint32(b.stash[:])
	b.stashLen = 0
	return uid, nil
}
