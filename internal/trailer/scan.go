// Package trailer implements the appending-header scanner: it probes the
// tail of a known-length source for ID3v1, Lyrics3, and APEv2 footers
// before the main parse begins, per spec.md §4.2. It is the only
// component in the pipeline that performs true random access, via
// token.RandomReader; every other component consumes a forward-only
// token.Tokenizer.
package trailer

import (
	"bytes"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
)

const (
	id3v1Size       = 128
	lyrics3v2Footer = "LYRICS200"
	lyrics3v1Marker = "LYRICSBEGIN"
	lyrics3MaxSpan  = 5100
	apeFooterMagic  = "APETAGEX"
	apeFooterSize   = 32
)

// Offsets records which trailers were found and where each begins,
// measured as an absolute byte offset from the start of the source.
type Offsets struct {
	ID3v1        bool
	ID3v1Start   int64
	Lyrics3      bool
	Lyrics3Start int64
	APEv2        bool
	APEv2Start   int64
}

// Scan implements spec.md §4.2: (a) read the last 128 bytes and test for
// "TAG" at offset 0; (b) if ID3v1 is present, probe for a Lyrics3 footer
// immediately before it; (c) probe for an APEv2 footer at the position
// adjusted by whatever was found in (a)/(b). It never errors: an
// unrecognized or truncated trailer simply yields no offset and, where the
// defect is worth surfacing, a warning.
func Scan(rr token.RandomReader) (Offsets, []format.Warning) {
	var out Offsets
	var warnings []format.Warning

	size := rr.Size()
	if size < id3v1Size {
		return out, warnings
	}

	boundary := size

	if buf, ok := readAt(rr, size-id3v1Size, id3v1Size); ok && bytes.HasPrefix(buf, []byte("TAG")) {
		out.ID3v1 = true
		out.ID3v1Start = size - id3v1Size
		boundary = out.ID3v1Start
	}

	if l3, w := probeLyrics3(rr, boundary); l3.Lyrics3 {
		out.Lyrics3 = true
		out.Lyrics3Start = l3.Lyrics3Start
		boundary = l3.Lyrics3Start
		warnings = append(warnings, w...)
	}

	if ape, w := probeAPEv2(rr, boundary); ape.APEv2 {
		out.APEv2 = true
		out.APEv2Start = ape.APEv2Start
		warnings = append(warnings, w...)
	}

	return out, warnings
}

func probeLyrics3(rr token.RandomReader, boundary int64) (Offsets, []format.Warning) {
	var out Offsets

	// Lyrics3v2: a 6-digit ASCII size field followed by the 9-byte
	// "LYRICS200" marker, both immediately preceding boundary.
	if boundary >= 15 {
		if buf, ok := readAt(rr, boundary-15, 15); ok && bytes.Equal(buf[6:], []byte(lyrics3v2Footer)) {
			n, ok := parseDecimal(buf[:6])
			if ok && boundary-15-n >= 0 {
				out.Lyrics3 = true
				out.Lyrics3Start = boundary - 15 - n
				return out, nil
			}
			return out, []format.Warning{format.Warnf(format.DecodeError, "trailer.probeLyrics3",
				"LYRICS200 footer found with unparsable size field")}
		}
	}

	// Lyrics3v1 has no size field: scan backward within the 5100-byte
	// maximum span for its begin marker.
	span := boundary
	if span > lyrics3MaxSpan {
		span = lyrics3MaxSpan
	}
	if span < int64(len(lyrics3v1Marker)) {
		return out, nil
	}
	buf, ok := readAt(rr, boundary-span, span)
	if !ok {
		return out, nil
	}
	if idx := bytes.Index(buf, []byte(lyrics3v1Marker)); idx >= 0 {
		out.Lyrics3 = true
		out.Lyrics3Start = boundary - span + int64(idx)
	}
	return out, nil
}

func probeAPEv2(rr token.RandomReader, boundary int64) (Offsets, []format.Warning) {
	var out Offsets
	if boundary < apeFooterSize {
		return out, nil
	}
	buf, ok := readAt(rr, boundary-apeFooterSize, apeFooterSize)
	if !ok || !bytes.HasPrefix(buf, []byte(apeFooterMagic)) {
		return out, nil
	}
	// Footer layout: 8-byte magic, 4-byte version, 4-byte tag size (the
	// footer plus every item, but not the optional 32-byte header),
	// 4-byte item count, 4-byte flags, 8 reserved bytes.
	tagSize := int64(leUint32(buf[12:16]))
	hasHeader := buf[23]&0x80 != 0 // MSB of the little-endian flags DWORD
	start := boundary - tagSize
	if hasHeader {
		start -= apeFooterSize
	}
	if start < 0 {
		return out, []format.Warning{format.Warnf(format.DecodeError, "trailer.probeAPEv2",
			"APEv2 footer declares a tag size larger than the preceding data")}
	}
	out.APEv2 = true
	out.APEv2Start = start
	return out, nil
}

func readAt(rr token.RandomReader, off, n int64) ([]byte, bool) {
	if off < 0 {
		return nil, false
	}
	buf := make([]byte, n)
	read, err := rr.ReadAt(buf, off)
	if err != nil && int64(read) < n {
		return nil, false
	}
	return buf, true
}

func parseDecimal(b []byte) (int64, bool) {
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
