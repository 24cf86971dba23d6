// Package containers defines the shared contract every per-format
// subpackage (internal/containers/id3v2, .../flac, .../mp4, ...)
// implements, per spec.md §4.4.
package containers

import (
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// Options carries the subset of the root package's Options a container
// parser needs to know about; it is a narrower type than tag.Options so
// this package never imports the root package (which would be a cycle).
type Options struct {
	SkipCovers      bool
	SkipPostHeaders bool
	// APEOffset, when non-zero, is the absolute offset of an APEv2 tag
	// block as resolved by the root package: the caller's Options.APEOffset
	// when set, otherwise the trailer scanner's finding (spec.md §9's open
	// question, resolved in SPEC_FULL.md §10).
	APEOffset int64
}

// Emitter appends one decoded native tag under the given tag system,
// preserving arrival order and duplicate identifiers per the data model.
type Emitter func(system format.TagSystem, id string, v nativetag.Value)

// Parse is the contract every container subpackage implements: given a
// tokenizer positioned at the start of that container's region and a set
// of options, decode format facts into facts and emit every native tag
// found via emit. A non-nil error aborts the whole parse (spec.md §4.4);
// anything less than that becomes a warning.
type Parse func(tok token.Tokenizer, facts *format.Facts, opts Options, emit Emitter) ([]format.Warning, error)
