// Package dsdiff decodes a Philips DSDIFF (.dff) container (spec.md
// §4.4): the top-level "FRM8" form, its "PROP"/"SND " property chunks
// for format facts, and a "DIIN"/"ID3 " chunk for an embedded ID3v2
// block where present. No teacher file covers DSDIFF; the big-endian,
// 8-byte-size chunk framing is grounded in the published Philips DSDIFF
// specification, and the embedded-ID3v2 handling mirrors
// internal/containers/dsf's use of the shared ID3v2 decoder.
package dsdiff

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/containers/id3v2"
	"github.com/hvianna/music-metadata/internal/token"
)

// Parse reads the 16-byte "FRM8"/size/"DSD " header (already confirmed
// by internal/sniff) and every top-level local chunk that follows.
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	hdr, err := tok.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	if string(hdr[0:4]) != "FRM8" || string(hdr[12:16]) != "DSD " {
		return nil, format.NewError(format.DecodeError, "dsdiff.Parse", errNotDSDIFF)
	}

	facts.SetCodec("DSD")
	facts.SetLossless(true)

	var warnings []format.Warning
	for {
		id, size, err := readChunkHeader(tok)
		if err != nil {
			break
		}
		padded := size + size%2

		switch id {
		case "PROP":
			w, err := readProp(tok, size, facts)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "dsdiff.Parse", "PROP chunk: %v", err))
				return warnings, nil
			}
			if padded > size {
				_ = tok.Skip(1)
			}
		case "DSD ":
			// Raw DSD audio payload; decoding samples is out of scope.
			if err := tok.Skip(int64(padded)); err != nil {
				return warnings, nil
			}
		case "DIIN":
			w, err := readDIIN(tok, size, facts, opts, emit)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "dsdiff.Parse", "DIIN chunk: %v", err))
			}
			if padded > size {
				_ = tok.Skip(1)
			}
		default:
			if err := tok.Skip(int64(padded)); err != nil {
				return warnings, nil
			}
		}
	}
	return warnings, nil
}

func readChunkHeader(tok token.Tokenizer) (id string, size uint64, err error) {
	b, err := tok.ReadBytes(12)
	if err != nil {
		return "", 0, err
	}
	return string(b[0:4]), binary.BigEndian.Uint64(b[4:12]), nil
}

// readProp decodes the "SND " property chunk's "FS  " (sample rate) and
// "CHNL" (channel count) sub-chunks; "CMPR" (compression type) is
// recorded as the codec profile.
func readProp(tok token.Tokenizer, size uint64, facts *format.Facts) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	if len(body) < 4 || string(body[0:4]) != "SND " {
		return nil, nil
	}
	body = body[4:]

	var warnings []format.Warning
	for len(body) >= 12 {
		id := string(body[0:4])
		subSize := binary.BigEndian.Uint64(body[4:12])
		body = body[12:]
		if uint64(len(body)) < subSize {
			warnings = append(warnings, format.Warnf(format.DecodeError, "dsdiff.readProp",
				"property sub-chunk %q declares size past the PROP body", id))
			break
		}
		value := body[:subSize]
		body = body[subSize:]
		if subSize%2 == 1 && len(body) > 0 {
			body = body[1:]
		}

		switch id {
		case "FS  ":
			if len(value) >= 4 {
				facts.SetSampleRate(int(binary.BigEndian.Uint32(value[0:4])))
			}
		case "CHNL":
			if len(value) >= 2 {
				facts.SetNumChannels(int(binary.BigEndian.Uint16(value[0:2])))
			}
		case "CMPR":
			if len(value) >= 4 {
				compression := string(value[0:4])
				if compression != "DSD " {
					facts.SetCodecProfile(compression)
				}
			}
		}
	}
	return warnings, nil
}

// readDIIN decodes the "DIIN" (Edited Master Information) chunk only far
// enough to find a nested "ID3 " sub-chunk carrying an embedded ID3v2
// tag, which some DSDIFF encoders use in place of native comment chunks.
func readDIIN(tok token.Tokenizer, size uint64, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	var warnings []format.Warning
	for len(body) >= 12 {
		id := string(body[0:4])
		subSize := binary.BigEndian.Uint64(body[4:12])
		body = body[12:]
		if uint64(len(body)) < subSize {
			break
		}
		value := body[:subSize]
		body = body[subSize:]
		if subSize%2 == 1 && len(body) > 0 {
			body = body[1:]
		}
		if id == "ID3 " {
			w, err := id3v2.Parse(token.FromBuffer(value), facts, opts, emit)
			warnings = append(warnings, w...)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "dsdiff.readDIIN", "embedded ID3v2: %v", err))
			}
		}
	}
	return warnings, nil
}

type dsdiffErr string

func (e dsdiffErr) Error() string { return string(e) }

const errNotDSDIFF = dsdiffErr("missing FRM8/DSD magic")
