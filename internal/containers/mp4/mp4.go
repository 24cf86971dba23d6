// Package mp4 walks an MP4/M4A box tree (spec.md §4.4): it descends into
// moov/udta/meta/ilst for tags and into moov/trak/mdia/mdhd+minf/stbl/stsd
// for format facts. Grounded on the teacher's mp4.go readAtoms/
// readAtomData/readCustomAtom (box-size framing, the "----" freeform-atom
// mean/name/data triplet, the trkn/disk six-byte int-pair encoding, PNG
// sniffing for an "implicit" covr), generalized from a name-to-friendly-
// name lookup table plus fixed accessor methods into an emitter that
// forwards every recognized atom as a native tag, and extended to walk
// the sample-description box for sample rate/channel/bit-depth facts,
// which the teacher's package never reported.
package mp4

import (
	"bytes"
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/genre"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

var pngHeader = []byte{137, 80, 78, 71, 13, 10, 26, 10}

// textAtoms lists the ilst children whose data atom is a plain UTF-8
// string, emitted as-is.
var textAtoms = map[string]bool{
	"\xa9nam": true, "\xa9ART": true, "aART": true, "\xa9alb": true,
	"\xa9wrt": true, "\xa9gen": true, "\xa9day": true, "\xa9cmt": true,
	"\xa9lyr": true, "cprt": true,
}

// Parse walks every top-level box, descending into container boxes
// (moov, udta, meta, ilst, trak, mdia, minf, stbl) and dispatching leaf
// boxes either to tag decoding (inside ilst) or format-fact decoding
// (stsd, mdhd).
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	facts.SetCodec("AAC")
	w := &walker{facts: facts, opts: opts, emit: emit}
	warnings, err := w.walkBoxes(tok, -1)
	if err != nil {
		return warnings, format.NewError(format.DecodeError, "mp4.Parse", err)
	}
	return warnings, nil
}

type walker struct {
	facts *format.Facts
	opts  containers.Options
	emit  containers.Emitter
	inMP4 bool // set once an "ilst" box is entered, so tag emission only happens there
}

// walkBoxes reads consecutive boxes until limit bytes have been consumed
// (limit < 0 means "until the tokenizer is exhausted").
func (w *walker) walkBoxes(tok token.Tokenizer, limit int64) ([]format.Warning, error) {
	var warnings []format.Warning
	var consumed int64
	for limit < 0 || consumed < limit {
		size, headerLen, name, err := readBoxHeader(tok)
		if err != nil {
			if limit < 0 {
				break // forward-only source ran out; that's the normal end of the box tree
			}
			return warnings, err
		}
		var body int64
		if size == 0 {
			// size 0 means "extends to the end of the enclosing container",
			// or to EOF for a top-level box (spec.md §4.4).
			if limit < 0 {
				body = -1
			} else {
				body = limit - consumed - headerLen
			}
			consumed = limit
			if body < 0 {
				body = -1
			}
		} else {
			consumed += size
			body = size - headerLen
		}
		if body < 0 && size != 0 {
			return warnings, format.NewError(format.DecodeError, "mp4.walkBoxes", errBadBoxSize)
		}

		switch name {
		case "moov", "udta", "trak", "mdia", "minf", "stbl":
			ww, err := w.walkBoxes(tok, body)
			warnings = append(warnings, ww...)
			if err != nil {
				return warnings, err
			}
			continue
		case "meta":
			if err := tok.Skip(4); err != nil { // version + flags
				return warnings, err
			}
			ww, err := w.walkBoxes(tok, body-4)
			warnings = append(warnings, ww...)
			if err != nil {
				return warnings, err
			}
			continue
		case "ilst":
			prev := w.inMP4
			w.inMP4 = true
			ww, err := w.walkBoxes(tok, body)
			warnings = append(warnings, ww...)
			w.inMP4 = prev
			if err != nil {
				return warnings, err
			}
			continue
		case "mdhd":
			ww, err := w.readMdhd(tok, body)
			warnings = append(warnings, ww...)
			if err != nil {
				return warnings, err
			}
			continue
		case "stsd":
			ww, err := w.readStsd(tok, body)
			warnings = append(warnings, ww...)
			if err != nil {
				return warnings, err
			}
			continue
		}

		if w.inMP4 {
			ww, err := w.readIlstChild(tok, name, body)
			warnings = append(warnings, ww...)
			if err != nil {
				return warnings, err
			}
			continue
		}

		if err := tok.Skip(body); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// readBoxHeader reads a box's 4-byte size, 4-byte type, and - when the
// 4-byte size reads exactly 1 - the 8-byte big-endian "largesize" that
// immediately follows the type, per spec.md §4.4. size 0 means "extends
// to the end of the enclosing container"; headerLen is how many bytes of
// size were actually consumed (8, or 16 for the extended form), so the
// caller can derive the body length as size-headerLen.
func readBoxHeader(tok token.Tokenizer) (size int64, headerLen int64, name string, err error) {
	size32, err := token.ReadUint[uint32](tok, 4, binary.BigEndian)
	if err != nil {
		return 0, 0, "", err
	}
	name, err = token.ReadString(tok, 4)
	if err != nil {
		return 0, 0, "", err
	}
	if size32 != 1 {
		return int64(size32), 8, name, nil
	}
	large, err := token.ReadUint[uint64](tok, 8, binary.BigEndian)
	if err != nil {
		return 0, 0, "", err
	}
	return int64(large), 16, name, nil
}

func (w *walker) readIlstChild(tok token.Tokenizer, name string, size int64) ([]format.Warning, error) {
	if name == "----" {
		return w.readFreeformAtom(tok, size)
	}

	b, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	if len(b) < 8 {
		return nil, nil
	}
	// "data" box: 4-byte size + "data" + 4-byte type class + 4-byte locale, already consumed above
	b = b[8:]
	if len(b) < 4 {
		return nil, nil
	}
	class := int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if len(b) < 8 {
		return nil, nil
	}
	b = b[8:]

	switch {
	case name == "trkn" || name == "disk":
		if len(b) < 6 {
			return nil, nil
		}
		w.emit(format.ITunes, name, nativetag.TrackDiscValue(int(b[3]), int(b[5])))
		return nil, nil
	case name == "tmpo":
		if len(b) < 1 {
			return nil, nil
		}
		w.emit(format.ITunes, name, nativetag.Int(int64(beInt(b))))
		return nil, nil
	case name == "pgap":
		if len(b) < 1 {
			return nil, nil
		}
		w.emit(format.ITunes, name, nativetag.Bool(b[len(b)-1] != 0))
		return nil, nil
	case name == "gnre":
		idx := beInt(b) - 1
		if g, ok := genre.Lookup(idx); ok {
			w.emit(format.ITunes, "\xa9gen", nativetag.String(g))
		}
		return nil, nil
	case name == "covr":
		if w.opts.SkipCovers {
			return nil, nil
		}
		mime := "image/jpeg"
		if bytes.HasPrefix(b, pngHeader) {
			mime = "image/png"
		}
		w.emit(format.ITunes, name, nativetag.PictureValue(&nativetag.Picture{
			MIMEType:    mime,
			Description: "cover",
			Data:        b,
		}))
		return nil, nil
	case textAtoms[name]:
		w.emit(format.ITunes, name, nativetag.String(string(b)))
		return nil, nil
	default:
		_ = class
		return nil, nil
	}
}

// readFreeformAtom decodes a "----" atom's mean/name/data sub-box triplet
// and, when the mean box reads "com.apple.iTunes", emits it keyed as
// "----:<name>" to match the same MusicBrainz freeform convention the
// tag mapper uses for other tag systems.
func (w *walker) readFreeformAtom(tok token.Tokenizer, size int64) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	var mean, subName string
	var data []byte
	for len(body) >= 8 {
		subSize := beInt(body[0:4])
		subType := string(body[4:8])
		if subSize < 8 || subSize > len(body) {
			break
		}
		sub := body[8:subSize]
		switch subType {
		case "mean":
			if len(sub) >= 4 {
				mean = string(sub[4:])
			}
		case "name":
			if len(sub) >= 4 {
				subName = string(sub[4:])
			}
		case "data":
			if len(sub) >= 8 {
				data = sub[8:] // skip type class + locale
			}
		}
		body = body[subSize:]
	}
	if mean != "com.apple.iTunes" || subName == "" || data == nil {
		return nil, nil
	}
	w.emit(format.ITunes, "----:"+subName, nativetag.String(string(data)))
	return nil, nil
}

func (w *walker) readMdhd(tok token.Tokenizer, size int64) ([]format.Warning, error) {
	b, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	if len(b) < 1 {
		return nil, nil
	}
	version := b[0]
	var timescale, duration uint64
	if version == 1 {
		if len(b) < 32 {
			return nil, nil
		}
		timescale = uint64(binary.BigEndian.Uint32(b[20:24]))
		duration = binary.BigEndian.Uint64(b[24:32])
	} else {
		if len(b) < 20 {
			return nil, nil
		}
		timescale = uint64(binary.BigEndian.Uint32(b[12:16]))
		duration = uint64(binary.BigEndian.Uint32(b[16:20]))
	}
	if timescale > 0 {
		w.facts.SetDuration(float64(duration) / float64(timescale))
	}
	return nil, nil
}

// readStsd decodes just enough of the sample-description box's first
// entry to report sample rate, channel count, and bit depth for a
// typical "mp4a" audio sample entry.
func (w *walker) readStsd(tok token.Tokenizer, size int64) ([]format.Warning, error) {
	b, err := tok.ReadBytes(int(size))
	if err != nil {
		return nil, err
	}
	if len(b) < 8 {
		return nil, nil
	}
	entries := b[4:8]
	if beInt(entries) < 1 || len(b) < 8+8 {
		return nil, nil
	}
	entry := b[8:]
	if len(entry) < 8 {
		return nil, nil
	}
	format4 := string(entry[4:8])
	if format4 == "mp4a" {
		w.facts.SetCodec("AAC")
	}
	// Audio sample entry fixed fields begin after the 8-byte box header and
	// a 6-byte reserved run plus 2-byte data-reference index (16 total).
	if len(entry) < 16+20 {
		return nil, nil
	}
	fixed := entry[16:]
	channels := binary.BigEndian.Uint16(fixed[8:10])
	sampleSize := binary.BigEndian.Uint16(fixed[10:12])
	sampleRate := binary.BigEndian.Uint32(fixed[16:20]) >> 16 // 16.16 fixed point
	w.facts.SetNumChannels(int(channels))
	w.facts.SetBitsPerSample(int(sampleSize))
	w.facts.SetSampleRate(int(sampleRate))
	return nil, nil
}

func beInt(b []byte) int {
	v := 0
	for _, x := range b {
		v = v<<8 | int(x)
	}
	return v
}

type mp4Err string

func (e mp4Err) Error() string { return string(e) }

const errBadBoxSize = mp4Err("box declares size smaller than its own header")
