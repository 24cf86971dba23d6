// Package apev2 is the container-level entry point for an APEv2 tag,
// whether standalone, appended to an MP3/WavPack/Musepack file's trailer,
// or (in principle) embedded anywhere else a caller hands it a byte
// range. No teacher file covers this format; the item-decode loop is
// grounded on the teacher's general "read count-prefixed entries from a
// block" idiom in flac.go's readVorbisComment, adapted to APEv2's
// item-flags layout (internal/apeitem).
package apev2

import (
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/apeitem"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
)

// Parse decodes itemCount APEv2 items starting at tok's current position
// (i.e. immediately after the optional 32-byte leading header, which the
// caller has already consumed along with the footer it read to learn
// itemCount — APEv2's item count is only ever recorded in a footer/header
// record, so unlike every other container this one cannot be decoded
// from a single forward pass without that random-access-derived hint).
func Parse(tok token.Tokenizer, itemCount int, facts *format.Facts, _ containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	facts.AddTagSystem(format.TagAPEv2)

	items, warnings, err := apeitem.DecodeItems(tok, itemCount)
	if err != nil {
		return warnings, format.NewError(format.DecodeError, "apev2.Parse", err)
	}
	for _, it := range items {
		emit(format.TagAPEv2, it.Key, it.Value())
	}
	return warnings, nil
}
