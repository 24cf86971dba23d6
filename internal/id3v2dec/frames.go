package id3v2dec

import (
	"bytes"
	"strings"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// Frame is one decoded ID3v2 frame, ready to append to a nativetag.Set.
type Frame struct {
	ID    string
	Value nativetag.Value
}

// Options controls frame decoding.
type Options struct {
	SkipCovers bool
}

type frameFlags struct {
	unsynchronisation   bool
	dataLengthIndicator bool
}

func parseFrameFlags(b []byte) frameFlags {
	return frameFlags{
		unsynchronisation:   b[1]&0x02 != 0,
		dataLengthIndicator: b[1]&0x01 != 0,
	}
}

func be32(b []byte) int {
	return int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
}

func syncsafe32(b []byte) int {
	v := 0
	for _, x := range b {
		v = v<<7 | int(x&0x7f)
	}
	return v
}

// Decode reads frames from tok, positioned immediately after the 10-byte
// tag header, until h.Size bytes of tag body have been consumed, invoking
// emit for each decoded frame. It matches the teacher's readID3v2Frames
// loop (stop at a zero-size frame: padding has begun) but restores
// unsynchronised bytes at both the tag level (v2.2/v2.3, whole remaining
// body) and the frame level (v2.4's per-frame flag, which the teacher
// left as a FIXME and simply skipped).
func Decode(tok token.Tokenizer, h Header, opts Options, emit func(Frame)) ([]format.Warning, error) {
	if h.Unsynchronisation && h.Version != format.ID3v2_4 {
		body, err := tok.ReadBytes(h.Size)
		if err != nil {
			return nil, err
		}
		body = removeUnsync(body)
		return decodeFrames(token.FromBuffer(body), h, opts, emit, len(body))
	}
	return decodeFrames(tok, h, opts, emit, h.Size)
}

func decodeFrames(bt token.Tokenizer, h Header, opts Options, emit func(Frame), remaining int) ([]format.Warning, error) {
	var warnings []format.Warning
	consumed := 0

	for consumed < remaining {
		var id string
		var size, headerSize int
		var flags frameFlags
		var hasFlags bool

		switch h.Version {
		case format.ID3v2_2:
			b, err := bt.ReadBytes(6)
			if err != nil {
				return warnings, nil
			}
			id = string(b[0:3])
			size = int(b[3])<<16 | int(b[4])<<8 | int(b[5])
			headerSize = 6

		case format.ID3v2_3:
			b, err := bt.ReadBytes(10)
			if err != nil {
				return warnings, nil
			}
			id = string(b[0:4])
			size = be32(b[4:8])
			flags = parseFrameFlags(b[8:10])
			hasFlags = true
			headerSize = 10

		case format.ID3v2_4:
			b, err := bt.ReadBytes(10)
			if err != nil {
				return warnings, nil
			}
			id = string(b[0:4])
			size = syncsafe32(b[4:8])
			flags = parseFrameFlags(b[8:10])
			hasFlags = true
			headerSize = 10
		}

		id = strings.TrimSpace(id)
		if size <= 0 || id == "" {
			break // padding zone
		}
		consumed += headerSize

		if consumed+size > remaining {
			warnings = append(warnings, format.Warnf(format.DecodeError, "id3v2dec.Decode",
				"frame %s declares size %d beyond tag bounds, stopping", id, size))
			break
		}

		payload, err := bt.ReadBytes(size)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "id3v2dec.Decode",
				"frame %s truncated: %v", id, err))
			break
		}
		consumed += size

		if hasFlags && flags.dataLengthIndicator {
			if len(payload) < 4 {
				warnings = append(warnings, format.Warnf(format.DecodeError, "id3v2dec.Decode",
					"frame %s too short for its data length indicator", id))
				continue
			}
			payload = payload[4:]
		}
		if hasFlags && flags.unsynchronisation {
			payload = removeUnsync(payload)
		}

		w := decodeFrame(id, payload, opts, emit)
		warnings = append(warnings, w...)
	}
	return warnings, nil
}

func decodeFrame(id string, b []byte, opts Options, emit func(Frame)) []format.Warning {
	if len(b) == 0 {
		return nil
	}
	switch {
	case id == "TXXX" || id == "TXX":
		return decodeUserText(id, b, emit)
	case id == "WXXX" || id == "WXX":
		return decodeUserURL(id, b, emit)
	case id[0] == 'T':
		return decodeTextFrame(id, b, emit)
	case id[0] == 'W':
		emit(Frame{ID: id, Value: nativetag.String(string(b))})
		return nil
	case id == "COMM" || id == "USLT" || id == "COM" || id == "ULT":
		return decodeDescribedText(id, b, emit)
	case id == "APIC":
		return decodeAPIC(id, b, opts, emit)
	case id == "PIC":
		return decodePIC(id, b, opts, emit)
	case id == "PRIV":
		return decodePRIV(id, b, emit)
	case id == "UFID" || id == "UFI":
		return decodeUFID(id, b, emit)
	case id == "POPM":
		return decodePOPM(id, b, emit)
	case id == "MCDI":
		emit(Frame{ID: id, Value: nativetag.Bytes(b)})
		return nil
	}
	return nil
}

// decodeTextFrame matches the teacher's readTFrame, except that
// multi-value text (v2.4 permits several NUL-separated values per
// spec.md §4.4) is emitted as one Tag per value instead of silently
// joined into a single string.
func decodeTextFrame(id string, b []byte, emit func(Frame)) []format.Warning {
	enc := b[0]
	txt, err := decodeText(enc, b[1:])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeTextFrame", "%s: %v", id, err)}
	}
	for _, part := range strings.Split(txt, "\x00") {
		if part == "" {
			continue
		}
		emit(Frame{ID: id, Value: nativetag.String(part)})
	}
	return nil
}

func decodeUserText(id string, b []byte, emit func(Frame)) []format.Warning {
	enc := b[0]
	parts, err := splitOnce(b[1:], enc)
	if err != nil || len(parts) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeUserText", "%s: malformed TXXX", id)}
	}
	desc, err := decodeText(enc, parts[0])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeUserText", "%s description: %v", id, err)}
	}
	val, err := decodeText(enc, parts[1])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeUserText", "%s value: %v", id, err)}
	}
	emit(Frame{ID: id + ":" + desc, Value: nativetag.String(val)})
	return nil
}

func decodeUserURL(id string, b []byte, emit func(Frame)) []format.Warning {
	enc := b[0]
	parts, err := splitOnce(b[1:], enc)
	if err != nil || len(parts) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeUserURL", "%s: malformed WXXX", id)}
	}
	desc, err := decodeText(enc, parts[0])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeUserURL", "%s description: %v", id, err)}
	}
	emit(Frame{ID: id + ":" + desc, Value: nativetag.String(string(parts[1]))})
	return nil
}

// decodeDescribedText matches the teacher's readTextWithDescrFrame
// (COMM/USLT): encoding byte, 3-byte language, NUL-terminated
// description, then the remaining text.
func decodeDescribedText(id string, b []byte, emit func(Frame)) []format.Warning {
	if len(b) < 4 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeDescribedText", "%s too short", id)}
	}
	enc := b[0]
	parts, err := splitOnce(b[4:], enc)
	if err != nil || len(parts) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeDescribedText", "%s: malformed", id)}
	}
	text, err := decodeText(enc, parts[1])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeDescribedText", "%s text: %v", id, err)}
	}
	emit(Frame{ID: id, Value: nativetag.String(text)})
	return nil
}

// pictureTypes mirrors the teacher's table in id3v2frames.go.
var pictureTypes = map[byte]string{
	0x00: "Other",
	0x01: "32x32 pixels 'file icon' (PNG only)",
	0x02: "Other file icon",
	0x03: "Cover (front)",
	0x04: "Cover (back)",
	0x05: "Leaflet page",
	0x06: "Media (e.g. label side of CD)",
	0x07: "Lead artist/lead performer/soloist",
	0x08: "Artist/performer",
	0x09: "Conductor",
	0x0A: "Band/Orchestra",
	0x0B: "Composer",
	0x0C: "Lyricist/text writer",
	0x0D: "Recording Location",
	0x0E: "During recording",
	0x0F: "During performance",
	0x10: "Movie/video screen capture",
	0x11: "A bright coloured fish",
	0x12: "Illustration",
	0x13: "Band/artist logotype",
	0x14: "Publisher/Studio logotype",
}

func decodeAPIC(id string, b []byte, opts Options, emit func(Frame)) []format.Warning {
	if len(b) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeAPIC", "frame too short")}
	}
	enc := b[0]
	mimeSplit := bytes.SplitN(b[1:], []byte{0}, 2)
	if len(mimeSplit) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeAPIC", "missing MIME type terminator")}
	}
	mimeType := string(mimeSplit[0])
	rest := mimeSplit[1]
	if len(rest) < 1 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeAPIC", "frame too short for picture type")}
	}
	picType := rest[0]
	descData, err := splitOnce(rest[1:], enc)
	if err != nil || len(descData) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeAPIC", "malformed description")}
	}
	desc, err := decodeText(enc, descData[0])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeAPIC", "description: %v", err)}
	}
	data := descData[1]
	if opts.SkipCovers {
		data = nil
	}
	emit(Frame{ID: id, Value: nativetag.PictureValue(&nativetag.Picture{
		MIMEType:    mimeType,
		Data:        data,
		Description: desc,
		Type:        pictureTypes[picType],
	})})
	return nil
}

func decodePIC(id string, b []byte, opts Options, emit func(Frame)) []format.Warning {
	if len(b) < 5 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodePIC", "frame too short")}
	}
	enc := b[0]
	ext := string(b[1:4])
	picType := b[4]
	descData, err := splitOnce(b[5:], enc)
	if err != nil || len(descData) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodePIC", "malformed description")}
	}
	desc, err := decodeText(enc, descData[0])
	if err != nil {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodePIC", "description: %v", err)}
	}
	var mimeType string
	switch ext {
	case "jpeg", "jpg":
		mimeType = "image/jpeg"
	case "png":
		mimeType = "image/png"
	}
	data := descData[1]
	if opts.SkipCovers {
		data = nil
	}
	emit(Frame{ID: id, Value: nativetag.PictureValue(&nativetag.Picture{
		MIMEType:    mimeType,
		Data:        data,
		Description: desc,
		Type:        pictureTypes[picType],
	})})
	return nil
}

func decodePRIV(id string, b []byte, emit func(Frame)) []format.Warning {
	parts := bytes.SplitN(b, []byte{0}, 2)
	if len(parts) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodePRIV", "missing owner terminator")}
	}
	emit(Frame{ID: id + ":" + string(parts[0]), Value: nativetag.Bytes(parts[1])})
	return nil
}

func decodeUFID(id string, b []byte, emit func(Frame)) []format.Warning {
	parts := bytes.SplitN(b, []byte{0}, 2)
	if len(parts) < 2 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodeUFID", "missing owner terminator")}
	}
	emit(Frame{ID: id + ":" + string(parts[0]), Value: nativetag.Bytes(parts[1])})
	return nil
}

// decodePOPM decodes a "popularimeter" frame: a NUL-terminated email, a
// rating byte (0-255, mapped linearly onto [0,1] as byte/255), and an
// optional play counter this decoder does not surface.
func decodePOPM(id string, b []byte, emit func(Frame)) []format.Warning {
	parts := bytes.SplitN(b, []byte{0}, 2)
	if len(parts) < 2 || len(parts[1]) < 1 {
		return []format.Warning{format.Warnf(format.DecodeError, "id3v2dec.decodePOPM", "malformed frame")}
	}
	rating := float64(parts[1][0]) / 255.0
	emit(Frame{ID: id, Value: nativetag.RatingValue(&nativetag.Rating{
		Source: string(parts[0]),
		Rating: rating,
	})})
	return nil
}
