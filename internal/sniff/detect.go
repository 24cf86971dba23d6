// Package sniff implements the format detector (spec.md §4.3), grounded
// on the teacher's ReadFrom magic-byte switch in tag.go, generalized from
// its four-way dispatch (FLAC/Ogg/MP4/ID3v2, falling back to ID3v1) to the
// full container set, plus an MPEG/ADTS sync-word scan the teacher never
// needed since it only handled MP4 containers for AAC.
package sniff

import (
	"bytes"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
)

// scanWindow bounds how far into the stream the MPEG/ADTS sync-word scan
// looks before giving up, so a non-audio file with no recognizable magic
// doesn't force an unbounded read.
const scanWindow = 4096

// asfGUID is the 16-byte ASF Header Object GUID
// 75B22630-668E-11CF-A6D9-00AA0062CE6C, stored as it appears on the wire
// (first three GUID fields are little-endian, the last two are raw bytes).
var asfGUID = []byte{
	0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
	0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}

// Envelope reports that the peeked bytes are an ID3v2 header, not a
// terminal container; the caller must decode the ID3v2 envelope first and
// then call Detect again on the remaining stream.
const Envelope format.Container = "id3v2-envelope"

// Detect inspects tok's upcoming bytes (without consuming them) and
// reports which container they belong to. mimeHint, when non-empty, only
// breaks ties between candidates that both match by magic (spec.md §4.3
// step 4); it never overrides an unambiguous magic match.
func Detect(tok token.Tokenizer, mimeHint string) (format.Container, error) {
	head := peekBest(tok, 16)

	switch {
	case len(head) >= 3 && string(head[0:3]) == "ID3":
		return Envelope, nil
	case len(head) >= 4 && string(head[0:4]) == "fLaC":
		return format.FLAC, nil
	case len(head) >= 4 && string(head[0:4]) == "OggS":
		return format.Ogg, nil
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return format.RIFF, nil
	case len(head) >= 12 && string(head[0:4]) == "FORM" && (string(head[8:12]) == "AIFF" || string(head[8:12]) == "AIFC"):
		return format.AIFF, nil
	case len(head) >= 8 && string(head[4:8]) == "ftyp":
		return format.MP4, nil
	case len(head) >= 16 && bytes.Equal(head[0:16], asfGUID):
		return format.ASF, nil
	case len(head) >= 4 && (string(head[0:4]) == "MPCK"):
		return format.Musepack, nil
	case len(head) >= 3 && string(head[0:3]) == "MP+":
		return format.Musepack, nil
	case len(head) >= 4 && string(head[0:4]) == "DSD ":
		return format.DSF, nil
	case len(head) >= 4 && string(head[0:4]) == "FRM8":
		return format.DSDIFF, nil
	case len(head) >= 4 && string(head[0:4]) == "wvpk":
		return format.WavPack, nil
	case len(head) >= 8 && string(head[0:8]) == "APETAGEX":
		return format.APEv2, nil
	}

	if c, ok := scanForSyncWord(tok); ok {
		return c, nil
	}

	_ = mimeHint // no magic ambiguity in this container set needs a tiebreaker today
	return format.Undefined, format.ErrNoContainer
}

// scanForSyncWord looks for an MPEG audio frame sync (11 set bits) or an
// ADTS sync (12 set bits plus a profile nibble) within the initial scan
// window, per spec.md §4.3 steps 2-3. ADTS is checked first since its
// sync pattern is a strict subset of the looser MPEG mask.
func scanForSyncWord(tok token.Tokenizer) (format.Container, bool) {
	buf := peekBest(tok, scanWindow)
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] != 0xFF {
			continue
		}
		if buf[i+1]&0xF6 == 0xF0 {
			return format.ADTS, true
		}
		if buf[i+1]&0xE0 == 0xE0 {
			return format.MPEG, true
		}
	}
	return format.Undefined, false
}

// peekBest returns as many of the next n bytes as the tokenizer can
// currently supply, without erroring when fewer than n are available
// (a short source is not a sniff failure; it is simply evidence the magic
// being sought isn't present).
func peekBest(tok token.Tokenizer, n int) []byte {
	if size, ok := tok.Size(); ok && size-tok.Position() < int64(n) {
		n = int(size - tok.Position())
	}
	for ; n > 0; n-- {
		if b, err := tok.PeekBytes(n); err == nil {
			return b
		}
	}
	return nil
}
