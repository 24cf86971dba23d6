// Package apeitem decodes the APEv2 tag item list shared by the
// standalone containers/apev2 container and by the WavPack and Musepack
// containers, which delegate their tag data to an APEv2 footer per
// spec.md §4.4. No teacher file covers APEv2 directly; this is grounded
// on the teacher's flac.go readVorbisComment "count-prefixed length-value
// entries" idiom, adapted to APEv2's per-item flags word and key/value
// split on a NUL byte instead of '='.
package apeitem

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// ItemType is the APEv2 item value-type enumeration (flags bits 1-2).
type ItemType int

const (
	TypeUTF8 ItemType = iota
	TypeBinary
	TypeExternalLink
	typeReserved
)

// Item is one decoded APEv2 tag entry.
type Item struct {
	Key   string
	Type  ItemType
	Text  string // valid when Type is TypeUTF8 or TypeExternalLink
	Bytes []byte // valid when Type is TypeBinary
}

// Value converts the item into a nativetag.Value of the appropriate kind.
func (it Item) Value() nativetag.Value {
	if it.Type == TypeBinary {
		return nativetag.Bytes(it.Bytes)
	}
	return nativetag.String(it.Text)
}

// DecodeItems reads count APEv2 items from tok, positioned at the first
// item of the tag body (immediately after the header, or at the start of
// the footer-preceded body when there is no header).
func DecodeItems(tok token.Tokenizer, count int) ([]Item, []format.Warning, error) {
	var warnings []format.Warning
	items := make([]Item, 0, count)

	for i := 0; i < count; i++ {
		valueLen, err := token.ReadUint[uint32](tok, 4, binary.LittleEndian)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "apeitem.DecodeItems",
				"truncated before item %d/%d", i, count))
			break
		}
		flags, err := token.ReadUint[uint32](tok, 4, binary.LittleEndian)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "apeitem.DecodeItems",
				"truncated reading flags for item %d/%d", i, count))
			break
		}
		key, err := readNulKey(tok)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "apeitem.DecodeItems",
				"truncated reading key for item %d/%d", i, count))
			break
		}
		value, err := tok.ReadBytes(int(valueLen))
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "apeitem.DecodeItems",
				"truncated reading value for item %q", key))
			break
		}

		typ := ItemType((flags >> 1) & 0x3)
		item := Item{Key: key, Type: typ}
		switch typ {
		case TypeBinary:
			item.Bytes = value
		case typeReserved:
			warnings = append(warnings, format.Warnf(format.DecodeError, "apeitem.DecodeItems",
				"item %q declares reserved type, treating as UTF-8", key))
			item.Type = TypeUTF8
			item.Text = string(value)
		default:
			item.Text = string(value)
		}
		items = append(items, item)
	}
	return items, warnings, nil
}

func readNulKey(tok token.Tokenizer) (string, error) {
	var buf []byte
	for {
		b, err := tok.ReadBytes(1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(buf), nil
		}
		buf = append(buf, b[0])
	}
}
