package token

import (
	"bytes"
	"io"
)

// RandomReader is the capability the trailer scanner needs and the rest of
// the parser pipeline deliberately lacks: true random access plus a known
// length, for reading the last N bytes of a source to look for an ID3v1,
// Lyrics3, or APEv2 trailer (spec.md §4.2) before any forward parse begins.
type RandomReader interface {
	io.ReaderAt
	Size() int64
}

type randomReader struct {
	r    io.ReaderAt
	size int64
}

func (r randomReader) ReadAt(p []byte, off int64) (int, error) { return r.r.ReadAt(p, off) }
func (r randomReader) Size() int64                              { return r.size }

// NewRandomReader wraps an io.ReaderAt (typically *os.File) of known size
// as a RandomReader.
func NewRandomReader(r io.ReaderAt, size int64) RandomReader {
	return randomReader{r: r, size: size}
}

// NewRandomReaderFromBytes wraps an in-memory buffer as a RandomReader,
// used by tests and by ParseFromBuffer (which already holds the whole
// file in memory).
func NewRandomReaderFromBytes(b []byte) RandomReader {
	return randomReader{r: bytes.NewReader(b), size: int64(len(b))}
}
