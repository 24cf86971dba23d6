// Package aiff decodes an AIFF/AIFF-C file (spec.md §4.4): the "COMM"
// chunk for format facts (including AIFF's 80-bit IEEE-754 extended
// sample rate), "NAME"/"AUTH"/"ANNO"/"(c) " text chunks for tags, and an
// embedded "ID3 "/"id3 " chunk. Grounded on the teacher's chunk-loop
// idiom (flac.go/mp4.go), generalized from RIFF's little-endian sizes to
// AIFF's big-endian ones and its no-padding-inside-text-chunks layout.
package aiff

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/containers/id3v2"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

var textFields = map[string]string{
	"NAME": "NAME",
	"AUTH": "AUTH",
	"ANNO": "ANNO",
	"(c) ": "(c) ",
}

// Parse reads the 12-byte FORM/AIFF(C) header (already confirmed by
// internal/sniff) and every top-level chunk that follows.
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	hdr, err := tok.ReadBytes(12)
	if err != nil {
		return nil, err
	}
	if string(hdr[0:4]) != "FORM" {
		return nil, format.NewError(format.DecodeError, "aiff.Parse", errNotAIFF)
	}
	isAIFC := string(hdr[8:12]) == "AIFC"
	if !isAIFC && string(hdr[8:12]) != "AIFF" {
		return nil, format.NewError(format.DecodeError, "aiff.Parse", errNotAIFF)
	}
	facts.SetCodec("PCM")
	facts.SetLossless(true)

	var warnings []format.Warning
	for {
		id, size, err := readChunkHeader(tok)
		if err != nil {
			break
		}
		padded := size
		if padded%2 == 1 {
			padded++
		}

		switch {
		case id == "COMM":
			if perr := readCOMM(tok, size, facts); perr != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "aiff.Parse", "COMM chunk: %v", perr))
				return warnings, nil
			}
			if padded > size {
				_ = tok.Skip(1)
			}
		case id == "SSND":
			// Offset(4) + BlockSize(4) precede the raw audio payload;
			// decoding samples is out of scope.
			if err := tok.Skip(int64(padded)); err != nil {
				return warnings, nil
			}
		case id == "ID3 " || id == "id3 ":
			w, err := readEmbeddedID3v2(tok, size, facts, opts, emit)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "aiff.Parse", "ID3 chunk: %v", err))
			}
			if padded > size {
				_ = tok.Skip(1)
			}
		case textFields[id] != "":
			b, err := tok.ReadBytes(int(size))
			if err != nil {
				return warnings, nil
			}
			if padded > size {
				_ = tok.Skip(1)
			}
			text := strings.TrimRight(string(b), "\x00")
			if text != "" {
				facts.AddTagSystem(format.TagAIFF)
				emit(format.TagAIFF, textFields[id], nativetag.String(text))
			}
		default:
			if err := tok.Skip(int64(padded)); err != nil {
				return warnings, nil
			}
		}
	}
	return warnings, nil
}

func readChunkHeader(tok token.Tokenizer) (id string, size uint32, err error) {
	b, err := tok.ReadBytes(8)
	if err != nil {
		return "", 0, err
	}
	return string(b[0:4]), binary.BigEndian.Uint32(b[4:8]), nil
}

// readCOMM decodes channel count, sample frame count, sample size, and
// the 80-bit extended-precision sample rate.
func readCOMM(tok token.Tokenizer, size uint32, facts *format.Facts) error {
	b, err := tok.ReadBytes(int(size))
	if err != nil {
		return err
	}
	if len(b) < 18 {
		return errShortCOMM
	}
	channels := binary.BigEndian.Uint16(b[0:2])
	numFrames := binary.BigEndian.Uint32(b[2:6])
	sampleSize := binary.BigEndian.Uint16(b[6:8])
	sampleRate := extendedToFloat64(b[8:18])

	facts.SetNumChannels(int(channels))
	facts.SetBitsPerSample(int(sampleSize))
	facts.SetNumSamples(uint64(numFrames))
	if sampleRate > 0 {
		facts.SetSampleRate(int(sampleRate))
	}

	if len(b) >= 22 {
		compression := string(b[18:22])
		if compression != "NONE" && compression != "" {
			facts.SetCodecProfile(compression)
		}
	}
	return nil
}

// extendedToFloat64 converts an 80-bit IEEE-754 extended-precision value
// (sign 1 bit, exponent 15 bits biased by 16383, 64-bit explicit-integer
// mantissa) to a float64, the encoding AIFF's "COMM" chunk uses for its
// sample rate field.
func extendedToFloat64(b []byte) float64 {
	if len(b) < 10 {
		return 0
	}
	sign := 1.0
	if b[0]&0x80 != 0 {
		sign = -1.0
	}
	exponent := int(binary.BigEndian.Uint16(b[0:2])&0x7FFF) - 16383
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if exponent == -16383 && mantissa == 0 {
		return 0
	}
	return sign * float64(mantissa) * math.Pow(2, float64(exponent-63))
}

func readEmbeddedID3v2(tok token.Tokenizer, size uint32, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	return id3v2.Parse(token.FromBuffer(body), facts, opts, emit)
}

type aiffErr string

func (e aiffErr) Error() string { return string(e) }

const (
	errNotAIFF   = aiffErr("missing FORM/AIFF(C) magic")
	errShortCOMM = aiffErr("COMM chunk shorter than 18 bytes")
)
