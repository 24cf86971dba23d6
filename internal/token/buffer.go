package token

import (
	"bytes"
	"io"
)

// randomTokenizer is the seekable-source Tokenizer backing, used for
// in-memory buffers and os.File/io.ReaderAt sources where the whole
// length is known up front. It still only exposes the forward-only
// Tokenizer interface; random access is reserved for RandomReader
// (randomreader.go), used exclusively by the trailer scanner.
type randomTokenizer struct {
	src  io.ReaderAt
	size int64
	pos  int64
}

// FromBuffer wraps an in-memory byte slice as a Tokenizer.
func FromBuffer(b []byte) Tokenizer {
	return &randomTokenizer{src: bytes.NewReader(b), size: int64(len(b))}
}

// FromReaderAt wraps any io.ReaderAt of known size as a Tokenizer, letting
// e.g. an *os.File be consumed forward-only without first buffering it.
func FromReaderAt(r io.ReaderAt, size int64) Tokenizer {
	return &randomTokenizer{src: r, size: size}
}

func (t *randomTokenizer) Size() (int64, bool) { return t.size, true }

func (t *randomTokenizer) Position() int64 { return t.pos }

func (t *randomTokenizer) ReadBytes(n int) ([]byte, error) {
	b, err := t.readAt(t.pos, n)
	if err != nil {
		return nil, err
	}
	t.pos += int64(n)
	return b, nil
}

func (t *randomTokenizer) PeekBytes(n int) ([]byte, error) {
	return t.readAt(t.pos, n)
}

func (t *randomTokenizer) Skip(n int64) error {
	if t.pos+n > t.size {
		return eofError("Skip", errEOS)
	}
	t.pos += n
	return nil
}

func (t *randomTokenizer) readAt(off int64, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if off+int64(n) > t.size {
		return nil, eofError("readAt", errEOS)
	}
	buf := make([]byte, n)
	if _, err := t.src.ReadAt(buf, off); err != nil {
		return nil, eofError("readAt", err)
	}
	return buf, nil
}
