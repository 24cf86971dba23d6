// Package id3v1 decodes the 128-byte ID3v1/v1.1 trailer located by
// internal/trailer, grounded on the conventional "TAG" + five
// fixed-width fields layout referenced by the teacher's id3v1_test.go
// (the id3v1.go implementation itself is not present in the pack; this
// is a from-scratch implementation of the well-known format) and on
// derat-mpeg's ReadID3v1Footer (other_examples/e915147d_*) for the
// v1.1 "zero byte then track number" heuristic in the comment field.
package id3v1

import (
	"strings"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/genre"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

const tagSize = 128

// Parse decodes a single 128-byte ID3v1 trailer, beginning at tok's
// current position. It is always called with a tokenizer wrapping
// exactly the trailer bytes located by internal/trailer.Scan.
func Parse(tok token.Tokenizer, emit func(id string, v nativetag.Value)) ([]format.Warning, error) {
	b, err := tok.ReadBytes(tagSize)
	if err != nil {
		return nil, format.NewError(format.DecodeError, "id3v1.Parse", err)
	}
	if string(b[0:3]) != "TAG" {
		return nil, format.NewError(format.DecodeError, "id3v1.Parse", errNotID3v1)
	}

	emitText(emit, "TITLE", b[3:33])
	emitText(emit, "ARTIST", b[33:63])
	emitText(emit, "ALBUM", b[63:93])
	emitText(emit, "YEAR", b[93:97])

	comment := b[97:127]
	var warnings []format.Warning
	if comment[28] == 0 && comment[29] != 0 {
		emitText(emit, "COMMENT", comment[:28])
		emit("TRACKNUMBER", nativetag.Int(int64(comment[29])))
	} else {
		emitText(emit, "COMMENT", comment)
	}

	genreID := int(b[127])
	if name, ok := genre.Lookup(genreID); ok {
		emit("GENRE", nativetag.String(name))
	} else if genreID != 0 {
		warnings = append(warnings, format.Warnf(format.DecodeError, "id3v1.Parse",
			"genre byte %d outside the known table", genreID))
	}

	return warnings, nil
}

func emitText(emit func(id string, v nativetag.Value), id string, b []byte) {
	s := strings.TrimRight(string(b), "\x00 ")
	if s != "" {
		emit(id, nativetag.String(s))
	}
}

type id3v1Err string

func (e id3v1Err) Error() string { return string(e) }

const errNotID3v1 = id3v1Err("missing \"TAG\" magic")
