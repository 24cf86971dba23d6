package token

import (
	"context"
	"errors"
	"io"

	"github.com/hvianna/music-metadata/format"
)

// streamTokenizer is the forward-only, non-seekable Tokenizer backing,
// grounded on the teacher's plain io.Reader consumption throughout
// id3v2.go/flac.go/ogg.go, generalized with a small peek buffer so
// PeekBytes can look ahead without an underlying io.Seeker.
type streamTokenizer struct {
	r       io.Reader
	pos     int64
	size    *int64
	peekBuf []byte
}

// FromReader wraps r as a Tokenizer. sizeHint, if non-nil, is reported by
// Size (callers pass os.FileInfo.Size() or an HTTP Content-Length when
// known; nil means "unknown", matching a genuinely streamed source such as
// an HTTP body with chunked transfer-encoding).
func FromReader(r io.Reader, sizeHint *int64) Tokenizer {
	return &streamTokenizer{r: r, size: sizeHint}
}

func (t *streamTokenizer) Size() (int64, bool) {
	if t.size == nil {
		return 0, false
	}
	return *t.size, true
}

func (t *streamTokenizer) Position() int64 { return t.pos }

func (t *streamTokenizer) fill(n int) error {
	if len(t.peekBuf) >= n {
		return nil
	}
	need := n - len(t.peekBuf)
	buf := make([]byte, need)
	read, err := io.ReadFull(t.r, buf)
	if read > 0 {
		t.peekBuf = append(t.peekBuf, buf[:read]...)
	}
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return eofError("fill", err)
		}
		if errors.Is(err, context.Canceled) {
			return format.NewError(format.Cancelled, "fill", err)
		}
		return format.NewError(format.DecodeError, "fill", err)
	}
	return nil
}

func (t *streamTokenizer) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := t.fill(n); err != nil {
		return nil, err
	}
	out := t.peekBuf[:n]
	t.peekBuf = t.peekBuf[n:]
	t.pos += int64(n)
	return out, nil
}

func (t *streamTokenizer) PeekBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := t.fill(n); err != nil {
		return nil, err
	}
	return t.peekBuf[:n], nil
}

func (t *streamTokenizer) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if int64(len(t.peekBuf)) >= n {
		t.peekBuf = t.peekBuf[n:]
		t.pos += n
		return nil
	}
	remaining := n - int64(len(t.peekBuf))
	t.pos += int64(len(t.peekBuf))
	t.peekBuf = nil
	copied, err := io.CopyN(io.Discard, t.r, remaining)
	t.pos += copied
	if err != nil {
		return eofError("Skip", err)
	}
	return nil
}
