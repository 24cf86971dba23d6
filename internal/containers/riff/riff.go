// Package riff decodes a RIFF/WAVE file (spec.md §4.4): the "fmt "
// chunk for format facts, "data" for a sample count, a nested "LIST"/
// "INFO" for tags, and an "id3 "/"ID3 " chunk for an embedded ID3v2
// block. Grounded on resona's codec/wav decoder
// (other_examples/e69fc5ea_*) for the WAVEFORMATEX field layout, and on
// the teacher's chunk-loop idiom from flac.go/mp4.go generalized to
// RIFF's little-endian chunk sizes and even-byte padding.
package riff

import (
	"encoding/binary"
	"strings"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/containers/id3v2"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// infoFields is the set of INFO list-chunk IDs emitted, unchanged, as
// native-tag identifiers under format.TagRIFF, the same IDs the mapper
// table (internal/mapper/table.go) keys its RIFF rows on.
var infoFields = map[string]bool{
	"INAM": true, "IART": true, "IPRD": true, "IGNR": true,
	"ICRD": true, "ICMT": true, "ICOP": true,
}

// Parse reads the 12-byte RIFF/WAVE header (already confirmed by
// internal/sniff) and every top-level chunk that follows.
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	hdr, err := tok.ReadBytes(12)
	if err != nil {
		return nil, err
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, format.NewError(format.DecodeError, "riff.Parse", errNotRIFF)
	}

	var warnings []format.Warning
	var blockAlign int

	for {
		id, size, err := readChunkHeader(tok)
		if err != nil {
			break // forward-only source exhausted: normal end of chunk list
		}
		padded := size + size%2

		switch id {
		case "fmt ":
			w, ba, perr := readFmt(tok, size, facts)
			warnings = append(warnings, w...)
			blockAlign = ba
			if perr != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "riff.Parse", "fmt chunk: %v", perr))
				return warnings, nil
			}
			if padded > size {
				if err := tok.Skip(1); err != nil {
					return warnings, nil
				}
			}
		case "data":
			if blockAlign > 0 {
				facts.SetNumSamples(uint64(size) / uint64(blockAlign))
			}
			// Audio sample decoding is out of scope; skip the payload.
			if err := tok.Skip(int64(padded)); err != nil {
				return warnings, nil
			}
		case "LIST":
			w, err := readList(tok, size, facts, emit)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "riff.Parse", "LIST chunk: %v", err))
				return warnings, nil
			}
			if padded > size {
				if err := tok.Skip(1); err != nil {
					return warnings, nil
				}
			}
		case "id3 ", "ID3 ":
			w, err := readEmbeddedID3v2(tok, size, facts, opts, emit)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "riff.Parse", "id3 chunk: %v", err))
			}
			if padded > size {
				if err := tok.Skip(1); err != nil {
					return warnings, nil
				}
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
	return string(b[0:4]), binary.LittleEndian.Uint32(b[4:8]), nil
}

// readFmt decodes the PCM-common prefix of a WAVEFORMATEX/WAVEFORMATEXTENSIBLE
// structure: format tag, channel count, sample rate, average byte rate,
// block align, and bits per sample.
func readFmt(tok token.Tokenizer, size uint32, facts *format.Facts) ([]format.Warning, int, error) {
	b, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, 0, err
	}
	if len(b) < 16 {
		return nil, 0, errShortFmt
	}
	audioFormat := binary.LittleEndian.Uint16(b[0:2])
	channels := binary.LittleEndian.Uint16(b[2:4])
	sampleRate := binary.LittleEndian.Uint32(b[4:8])
	byteRate := binary.LittleEndian.Uint32(b[8:12])
	blockAlign := binary.LittleEndian.Uint16(b[12:14])
	bitsPerSample := binary.LittleEndian.Uint16(b[14:16])

	facts.SetNumChannels(int(channels))
	facts.SetSampleRate(int(sampleRate))
	facts.SetBitsPerSample(int(bitsPerSample))
	if byteRate > 0 {
		facts.SetBitrate(int(byteRate) * 8)
	}
	facts.SetCodec(codecName(audioFormat))
	facts.SetLossless(audioFormat == 1)

	return nil, int(blockAlign), nil
}

func codecName(tag uint16) string {
	switch tag {
	case 1:
		return "PCM"
	case 3:
		return "IEEE Float"
	case 6:
		return "A-law"
	case 7:
		return "µ-law"
	case 0x55:
		return "MP3"
	case 0xFFFE:
		return "Extensible"
	default:
		return "unknown"
	}
}

// readList decodes a LIST chunk, descending into its nested sub-chunks
// only when its 4-byte type is "INFO"; any other LIST type (e.g.
// "adtl") is skipped whole.
func readList(tok token.Tokenizer, size uint32, facts *format.Facts, emit containers.Emitter) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	if len(body) < 4 || string(body[0:4]) != "INFO" {
		return nil, nil
	}
	facts.AddTagSystem(format.TagRIFF)
	body = body[4:]

	var warnings []format.Warning
	for len(body) >= 8 {
		id := string(body[0:4])
		subSize := binary.LittleEndian.Uint32(body[4:8])
		body = body[8:]
		if uint32(len(body)) < subSize {
			warnings = append(warnings, format.Warnf(format.DecodeError, "riff.readList",
				"INFO sub-chunk %q declares size past the LIST body", id))
			break
		}
		value := body[:subSize]
		body = body[subSize:]
		if subSize%2 == 1 && len(body) > 0 {
			body = body[1:]
		}
		if infoFields[id] {
			text := strings.TrimRight(string(value), "\x00")
			if text != "" {
				emit(format.TagRIFF, id, nativetag.String(text))
			}
		}
	}
	return warnings, nil
}

// readEmbeddedID3v2 decodes an ID3v2 tag carried inside a RIFF "id3 "/
// "ID3 " chunk by handing a sub-tokenizer over just that chunk's bytes to
// the shared ID3v2 decoder.
func readEmbeddedID3v2(tok token.Tokenizer, size uint32, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	return id3v2.Parse(token.FromBuffer(body), facts, opts, emit)
}

type riffErr string

func (e riffErr) Error() string { return string(e) }

const (
	errNotRIFF  = riffErr("missing RIFF/WAVE magic")
	errShortFmt = riffErr("fmt chunk shorter than 16 bytes")
)
