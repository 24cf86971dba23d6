// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tag implements a streaming-first audio metadata parser across
// MPEG/MP3, MP4, FLAC, Ogg, ASF, RIFF/WAVE, AIFF, WavPack, Musepack, DSF,
// DSDIFF, and ADTS containers, normalizing whatever native tags each one
// carries into a single common view while still exposing the native tag
// set it came from (spec.md §1). It is grounded on the teacher's tag.go
// ReadFrom dispatcher, generalized from a closed four-container switch
// into the sniffer/dispatcher pair in internal/sniff and this file.
package tag

import (
	"io"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/apeitem"
	"github.com/hvianna/music-metadata/internal/assemble"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/containers/adts"
	"github.com/hvianna/music-metadata/internal/containers/aiff"
	"github.com/hvianna/music-metadata/internal/containers/apev2"
	"github.com/hvianna/music-metadata/internal/containers/asf"
	"github.com/hvianna/music-metadata/internal/containers/dsdiff"
	"github.com/hvianna/music-metadata/internal/containers/dsf"
	"github.com/hvianna/music-metadata/internal/containers/flac"
	"github.com/hvianna/music-metadata/internal/containers/id3v1"
	"github.com/hvianna/music-metadata/internal/containers/id3v2"
	"github.com/hvianna/music-metadata/internal/containers/mp4"
	"github.com/hvianna/music-metadata/internal/containers/mpeg"
	"github.com/hvianna/music-metadata/internal/containers/musepack"
	"github.com/hvianna/music-metadata/internal/containers/ogg"
	"github.com/hvianna/music-metadata/internal/containers/riff"
	"github.com/hvianna/music-metadata/internal/containers/wavpack"
	"github.com/hvianna/music-metadata/internal/sniff"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/internal/trailer"
	"github.com/hvianna/music-metadata/nativetag"
	"github.com/hvianna/music-metadata/observer"
)

// Result is the immutable value a completed parse produces: format facts,
// the native tag set (when Options.Native is set), the normalized common
// view, and every warning collected along the way.
type Result = assemble.Result

// Options configures a parse, per spec.md §6.
type Options struct {
	// Path is an optional caller-supplied identifier used only for
	// diagnostics; it is never opened by this package.
	Path string
	// FileSize, when known, is passed through as the tokenizer's size
	// hint for a stream source and as the random-access source length
	// for a buffer/tokenizer source.
	FileSize int64
	// Native, when true, keeps Result.Native populated; otherwise it is
	// cleared after the common view is derived, to avoid holding onto
	// memory the caller didn't ask for.
	Native bool
	// SkipCovers and SkipPostHeaders mirror internal/containers.Options.
	SkipCovers      bool
	SkipPostHeaders bool
	// APEOffset, when non-zero, is the absolute offset of an APEv2 tag
	// block, taking precedence over whatever the trailer scanner finds
	// (spec.md §9, resolved in SPEC_FULL.md §10).
	APEOffset int64
	// Observer, when non-nil, receives every format/common field
	// assignment as the parse progresses (spec.md §4.6).
	Observer observer.Observer
}

// dispatch maps a detected container to the container package that knows
// how to parse it. APEv2 and ID3v1 are handled separately by parseInternal
// since their Parse signatures differ from containers.Parse (spec.md
// §4.4's data-dependent footer lookups).
var dispatch = map[format.Container]containers.Parse{
	format.MPEG:     mpeg.Parse,
	format.MP4:      mp4.Parse,
	format.FLAC:     flac.Parse,
	format.Ogg:      ogg.Parse,
	format.ASF:      asf.Parse,
	format.RIFF:     riff.Parse,
	format.AIFF:     aiff.Parse,
	format.WavPack:  wavpack.Parse,
	format.Musepack: musepack.Parse,
	format.DSF:      dsf.Parse,
	format.DSDIFF:   dsdiff.Parse,
	format.ADTS:     adts.Parse,
	format.APEv2:    apev2.ParseContainer,
}

// ParseFromBuffer parses an in-memory file, enabling the trailer scanner
// (ID3v1/Lyrics3/APEv2 footer detection) since the whole file is already
// addressable.
func ParseFromBuffer(b []byte, opts Options) (*Result, error) {
	tok := token.FromBuffer(b)
	rr := token.NewRandomReaderFromBytes(b)
	return parseInternal(tok, rr, int64(len(b)), opts)
}

// ParseFromStream parses a forward-only source. The trailer scanner never
// runs (it needs random access), so ID3v1/Lyrics3/APEv2 trailers are only
// found if they happen to precede any audio payload, which they never do
// in practice; this is a deliberate, documented limitation (spec.md §4.2).
func ParseFromStream(r io.Reader, opts Options) (*Result, error) {
	var sizeHint *int64
	if opts.FileSize > 0 {
		sizeHint = &opts.FileSize
	}
	tok := token.FromReader(r, sizeHint)
	return parseInternal(tok, nil, opts.FileSize, opts)
}

// ParseFromTokenizer is the advanced entry point for a caller that has
// already built its own Tokenizer (e.g. to wrap a custom transport). Like
// ParseFromStream, it runs without trailer scanning, and Options.APEOffset
// has no effect here: ID3v1 and APEv2 trailers are only decoded when
// parsing from a buffer.
func ParseFromTokenizer(tok token.Tokenizer, opts Options) (*Result, error) {
	size := opts.FileSize
	if size == 0 {
		if s, ok := tok.Size(); ok {
			size = s
		}
	}
	return parseInternal(tok, nil, size, opts)
}

// ReadFrom is kept for teacher compatibility: it reads the whole of r
// into memory (so the trailer scanner can run, unlike the teacher's
// seek-based original) and parses it as a buffer.
func ReadFrom(r io.Reader) (*Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, format.NewError(format.DecodeError, "tag.ReadFrom", err)
	}
	return ParseFromBuffer(b, Options{FileSize: int64(len(b))})
}

func parseInternal(tok token.Tokenizer, rr token.RandomReader, size int64, opts Options) (*Result, error) {
	facts := &format.Facts{}
	native := nativetag.NewSet()
	pump := observer.NewPump(opts.Observer)
	var warnings []format.Warning

	emit := func(system format.TagSystem, id string, v nativetag.Value) {
		native.Append(system, id, v)
	}

	apeOffset := opts.APEOffset
	var trailerOffsets trailer.Offsets
	if rr != nil {
		var tw []format.Warning
		trailerOffsets, tw = trailer.Scan(rr)
		warnings = append(warnings, tw...)
		if apeOffset == 0 && trailerOffsets.APEv2 {
			apeOffset = trailerOffsets.APEv2Start
		}
	}

	copts := containers.Options{
		SkipCovers:      opts.SkipCovers,
		SkipPostHeaders: opts.SkipPostHeaders,
		APEOffset:       apeOffset,
	}

	container, err := sniff.Detect(tok, "")
	if err != nil {
		return nil, format.NewError(format.UnsupportedContainer, "tag.parseInternal", err)
	}

	if container == sniff.Envelope {
		w, err := id3v2.Parse(tok, facts, copts, emit)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, err
		}
		container, err = sniff.Detect(tok, "")
		if err != nil {
			return nil, format.NewError(format.UnsupportedContainer, "tag.parseInternal", err)
		}
	}

	facts.Container = container

	parse, ok := dispatch[container]
	if !ok {
		return nil, format.NewError(format.UnsupportedContainer, "tag.parseInternal", format.ErrNoContainer)
	}
	w, err := parse(tok, facts, copts, emit)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, err
	}

	if !opts.SkipPostHeaders && rr != nil {
		warnings = append(warnings, parseTrailers(rr, size, trailerOffsets, apeOffset, copts, facts, emit)...)
	}

	facts.DeriveDuration(size)

	res, err := assemble.Assemble(*facts, native, warnings, pump)
	if err != nil {
		return nil, err
	}
	if !opts.Native {
		res.Native = nil
	}
	return res, nil
}

// parseTrailers decodes whichever of ID3v1 and APEv2 the trailer scanner
// (or a caller-supplied Options.APEOffset) located, independent of which
// container the main parse matched - an MP3 or WavPack file can carry
// both an ID3v1 trailer and an APEv2 block at once.
func parseTrailers(rr token.RandomReader, size int64, offsets trailer.Offsets, apeOffset int64, copts containers.Options, facts *format.Facts, emit containers.Emitter) []format.Warning {
	var warnings []format.Warning

	if offsets.ID3v1 {
		idTok := token.FromReaderAt(rr, rr.Size())
		if err := idTok.Skip(offsets.ID3v1Start); err == nil {
			w, err := id3v1.Parse(idTok, func(id string, v nativetag.Value) { emit(format.ID3v1, id, v) })
			warnings = append(warnings, w...)
			if err == nil {
				facts.AddTagSystem(format.ID3v1)
			} else {
				warnings = append(warnings, format.Warnf(format.DecodeError, "tag.parseTrailers",
					"ID3v1 trailer at %d: %v", offsets.ID3v1Start, err))
			}
		}
	}

	if apeOffset > 0 {
		boundary := size
		if offsets.ID3v1 {
			boundary = offsets.ID3v1Start
		}
		if offsets.Lyrics3 && offsets.Lyrics3Start < boundary {
			boundary = offsets.Lyrics3Start
		}
		footerOffset := boundary - apeitem.FooterSize
		if footerOffset >= apeOffset {
			ftok := token.FromReaderAt(rr, rr.Size())
			if err := ftok.Skip(footerOffset); err == nil {
				if footer, err := apeitem.ReadFooter(ftok); err == nil {
					itemsStart := apeOffset
					if footer.HasHeader {
						itemsStart += apeitem.FooterSize
					}
					itok := token.FromReaderAt(rr, rr.Size())
					if err := itok.Skip(itemsStart); err == nil {
						w, err := apev2.Parse(itok, int(footer.ItemCount), facts, copts, emit)
						warnings = append(warnings, w...)
						if err != nil {
							warnings = append(warnings, format.Warnf(format.DecodeError, "tag.parseTrailers",
								"APEv2 trailer at %d: %v", apeOffset, err))
						}
					}
				}
			}
		}
	}

	return warnings
}

// OrderTags flattens res.Native into a single id -> ordered-values map,
// independent of which tag system produced each value (spec.md's
// external-interfaces order_tags utility).
func OrderTags(res *Result) map[string][]nativetag.Value {
	if res == nil || res.Native == nil {
		return nil
	}
	return nativetag.OrderTags(res.Native)
}

// RatingToStars converts a normalized [0,1] rating to a conventional
// 1-5 star count: 0 for an out-of-range rating, otherwise 1 + round(r*4),
// which is always in {1..5} for r in [0,1] (spec.md §6, §8 property 5).
func RatingToStars(r float64) int {
	if r < 0 || r > 1 {
		return 0
	}
	return 1 + int(r*4+0.5)
}
