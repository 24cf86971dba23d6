// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package token implements the forward-only, position-tracked, typed
// tokenizer abstraction described in the spec (§4.1), generalizing the
// teacher's (dhowden/tag) family of free functions in util.go
// (readBytes, readString, readInt, read7BitChunkedUint, ...) into a single
// interface with two backings: a streaming, non-seekable reader and a
// random-access buffer/ReaderAt.
package token

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/hvianna/music-metadata/format"
)

// Tokenizer is the forward-only, typed-read capability set from spec.md
// §4.1. Stream-backed implementations cannot seek backwards; buffer- or
// ReaderAt-backed implementations can, but Tokenizer never exposes that —
// parsers only ever move forward, exactly like the teacher's io.Reader use
// throughout id3v2.go/flac.go/ogg.go (the teacher also seeks on occasion
// via io.ReadSeeker; here that capability is isolated in RandomReader so
// the common parser path stays forward-only per the spec).
type Tokenizer interface {
	// Size returns the total byte length of the source, if known.
	Size() (int64, bool)
	// Position returns the number of bytes consumed so far.
	Position() int64
	// ReadBytes reads exactly n bytes, advancing the position, or returns
	// a *format.Error{Kind: format.EndOfStream} if fewer are available.
	ReadBytes(n int) ([]byte, error)
	// PeekBytes returns the next n bytes without advancing the position.
	PeekBytes(n int) ([]byte, error)
	// Skip advances the position by n bytes without returning them.
	Skip(n int64) error
}

// Ignore is an alias for Skip, matching the spec's naming (ignore(len)
// alongside skip(len) as synonyms for "advance without reading").
func Ignore(t Tokenizer, n int64) error { return t.Skip(n) }

func eofError(op string, err error) error {
	return format.NewError(format.EndOfStream, op, err)
}

// errEOS is the sentinel wrapped by eofError when the random-access
// backing has no underlying I/O error of its own to report (the read
// simply ran past the known source length).
var errEOS = errors.New("short read: past end of source")

// ReadUint reads an n-byte (1..8) unsigned integer in the given byte
// order. T must be large enough to hold n bytes; this mirrors the spec's
// read_typed<T>() for fixed-width unsigned integers.
func ReadUint[T uint8 | uint16 | uint32 | uint64](t Tokenizer, n int, order binary.ByteOrder) (T, error) {
	b, err := t.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return T(decodeUint(b, order)), nil
}

// PeekUint is ReadUint without advancing the tokenizer.
func PeekUint[T uint8 | uint16 | uint32 | uint64](t Tokenizer, n int, order binary.ByteOrder) (T, error) {
	b, err := t.PeekBytes(n)
	if err != nil {
		return 0, err
	}
	return T(decodeUint(b, order)), nil
}

func decodeUint(b []byte, order binary.ByteOrder) uint64 {
	var v uint64
	if order == binary.BigEndian {
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// ReadInt reads an n-byte (1..8) two's-complement signed integer.
func ReadInt[T int8 | int16 | int32 | int64](t Tokenizer, n int, order binary.ByteOrder) (T, error) {
	b, err := t.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	u := decodeUint(b, order)
	shift := uint(64 - 8*n)
	return T(int64(u<<shift) >> shift), nil
}

// ReadSyncsafe reads an n-byte big-endian integer where only the low 7
// bits of each byte are significant (ID3v2.4 tag/frame sizes), matching
// the teacher's get7BitChunkedInt in util.go.
func ReadSyncsafe(t Tokenizer, n int) (int, error) {
	b, err := t.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var v int
	for _, x := range b {
		v = v<<7 | int(x&0x7f)
	}
	return v, nil
}

// ReadFloat32 reads a 4-byte IEEE-754 float.
func ReadFloat32(t Tokenizer, order binary.ByteOrder) (float32, error) {
	bits, err := ReadUint[uint32](t, 4, order)
	if err != nil {
		return 0, err
	}
	return uint32ToFloat32(bits), nil
}

// ReadFloat64 reads an 8-byte IEEE-754 float.
func ReadFloat64(t Tokenizer, order binary.ByteOrder) (float64, error) {
	bits, err := ReadUint[uint64](t, 8, order)
	if err != nil {
		return 0, err
	}
	return uint64ToFloat64(bits), nil
}

// ReadString reads n raw bytes and returns them as a Go string without any
// charset interpretation (suitable for ASCII-only fixed fields such as
// FourCC identifiers).
func ReadString(t Tokenizer, n int) (string, error) {
	b, err := t.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadNullTerminated reads bytes up to (and consuming, but not including in
// the result) the next null terminator of width termWidth (1 for
// single-byte encodings, 2 for UTF-16 variants), failing with EndOfStream
// if the source is exhausted first. maxLen bounds the scan to avoid
// unbounded buffering on a malformed stream.
func ReadNullTerminated(t Tokenizer, termWidth, maxLen int) ([]byte, error) {
	var out []byte
	for i := 0; i < maxLen; i += termWidth {
		b, err := t.ReadBytes(termWidth)
		if err != nil {
			return nil, err
		}
		allZero := true
		for _, x := range b {
			if x != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return out, nil
		}
		out = append(out, b...)
	}
	return nil, format.NewError(format.DecodeError, "ReadNullTerminated",
		errors.New("null terminator not found within bound"))
}

// CopyTo drains n bytes from t into w, used by parsers that need to hash or
// otherwise inspect a run of bytes they don't want to buffer whole.
func CopyTo(t Tokenizer, w io.Writer, n int64) error {
	const chunk = 32 * 1024
	for n > 0 {
		c := int64(chunk)
		if n < c {
			c = n
		}
		b, err := t.ReadBytes(int(c))
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
		n -= c
	}
	return nil
}
