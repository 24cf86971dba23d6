// Package id3v2 is the container-level entry point for an ID3v2.2/.3/.4
// block, whether reached as the MP3 envelope, a RIFF "id3 " chunk, or an
// embedded DSF/DSDIFF tag block (spec.md §4.4). It is a thin wrapper
// around internal/id3v2dec, the decoder shared across all of those call
// sites.
package id3v2

import (
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/id3v2dec"
	"github.com/hvianna/music-metadata/internal/token"
)

// Parse reads one ID3v2 tag beginning at tok's current position and emits
// every decoded frame as a native tag under the version-specific tag
// system (ID3v2.2, ID3v2.3, or ID3v2.4).
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	head, _ := tok.PeekBytes(10)
	h, err := id3v2dec.ReadHeader(tok)
	if err != nil {
		if fe, ok := err.(*format.Error); ok && fe.Kind == format.UnsupportedFeature {
			// Skip the unsupported tag's body (syncsafe size in header
			// bytes 6-9) so the audio behind it can still be sniffed.
			size := 0
			for _, x := range head[6:10] {
				size = size<<7 | int(x&0x7f)
			}
			_ = tok.Skip(int64(size))
			return []format.Warning{format.Warnf(format.UnsupportedFeature, "id3v2.Parse", "%v", err)}, nil
		}
		return nil, err
	}

	facts.AddTagSystem(h.Version)

	warnings, err := id3v2dec.Decode(tok, h, id3v2dec.Options{SkipCovers: opts.SkipCovers}, func(f id3v2dec.Frame) {
		emit(h.Version, f.ID, f.Value)
	})
	if err != nil {
		return warnings, format.NewError(format.DecodeError, "id3v2.Parse", err)
	}
	return warnings, nil
}
