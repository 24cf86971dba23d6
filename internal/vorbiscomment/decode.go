// Package vorbiscomment decodes the Vorbis comment block shared by FLAC
// ("VORBIS_COMMENT" metadata block) and Ogg (the second packet of a
// Vorbis or Opus logical stream), per spec.md §4.4. It is grounded on the
// teacher's readVorbisComment/parseComment in flac.go, generalized from a
// single-valued map (which silently drops repeated keys) to an ordered
// list of key/value pairs so a repeated ARTIST field round-trips intact.
package vorbiscomment

import (
	"strings"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
)

// Comment is one "KEY=value" entry, with Key upper-cased for lookup
// convenience (Vorbis comment keys are defined to be case-insensitive
// ASCII) and Value left exactly as decoded.
type Comment struct {
	Key   string
	Value string
}

// Block is a fully decoded Vorbis comment block.
type Block struct {
	Vendor   string
	Comments []Comment
}

// Decode reads vendor string + comment list from tok, positioned at the
// start of the block (i.e. directly after any container-specific framing
// such as the FLAC metadata-block header or the Ogg packet type byte the
// caller has already consumed).
func Decode(tok token.Tokenizer) (Block, []format.Warning, error) {
	var warnings []format.Warning

	vendorLen, err := token.ReadUint[uint32](tok, 4, leOrder)
	if err != nil {
		return Block{}, warnings, err
	}
	vendor, err := token.ReadString(tok, int(vendorLen))
	if err != nil {
		return Block{}, warnings, err
	}

	count, err := token.ReadUint[uint32](tok, 4, leOrder)
	if err != nil {
		return Block{}, warnings, err
	}

	block := Block{Vendor: vendor}
	for i := uint32(0); i < count; i++ {
		l, err := token.ReadUint[uint32](tok, 4, leOrder)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "vorbiscomment.Decode",
				"truncated before comment %d/%d", i, count))
			break
		}
		s, err := token.ReadString(tok, int(l))
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "vorbiscomment.Decode",
				"truncated comment %d/%d", i, count))
			break
		}
		kv := strings.SplitN(s, "=", 2)
		if len(kv) != 2 {
			warnings = append(warnings, format.Warnf(format.DecodeError, "vorbiscomment.Decode",
				"comment %q has no '=' separator, skipping", s))
			continue
		}
		block.Comments = append(block.Comments, Comment{Key: strings.ToUpper(kv[0]), Value: kv[1]})
	}
	return block, warnings, nil
}
