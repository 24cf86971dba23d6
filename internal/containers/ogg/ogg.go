// Package ogg decodes an Ogg bitstream's first logical stream (spec.md
// §4.4): the identification packet for format facts and the following
// comment packet, reassembled across page boundaries, for tags via the
// shared internal/vorbiscomment decoder. Grounded on the teacher's
// ogg.go page/packet reassembly (readPackets' continuation-flag
// handling is kept almost verbatim, adapted from io.ReadSeeker's
// backward Seek-to-rewind trick to a forward-only token.Tokenizer by
// peeking the next page header before deciding whether to consume it),
// generalized from Vorbis-only to also recognize Opus, Speex, and
// FLAC-in-Ogg by their first-packet magic per spec.md §4.4.
package ogg

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/internal/vorbiscomment"
	"github.com/hvianna/music-metadata/nativetag"
)

const pageHeaderSize = 27 // capture pattern through page_segments count, before the segment table

// Parse reads the first logical stream's identification packet, then its
// comment packet, emitting tags under format.Vorbis regardless of
// whether the codec turns out to be Vorbis or Opus, since both encode
// comments in the same vendor+KEY=value shape.
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	idPacket, warnings, err := readPacket(tok, true)
	if err != nil {
		return warnings, format.NewError(format.DecodeError, "ogg.Parse", err)
	}

	codec, tagsSupported := identifyCodec(idPacket, facts)
	if codec == "" {
		return warnings, format.NewError(format.DecodeError, "ogg.Parse", errUnknownCodec)
	}

	commentPacket, w, err := readPacket(tok, true)
	warnings = append(warnings, w...)
	if err != nil {
		warnings = append(warnings, format.Warnf(format.DecodeError, "ogg.Parse", "no comment packet: %v", err))
		return warnings, nil
	}

	if !tagsSupported {
		warnings = append(warnings, format.Warnf(format.UnsupportedFeature, "ogg.Parse",
			"%s comment packet decoding is not implemented", codec))
		return warnings, nil
	}

	body, skip := commentBodyOffset(codec, commentPacket)
	if len(body) < skip {
		warnings = append(warnings, format.Warnf(format.DecodeError, "ogg.Parse", "comment packet too short"))
		return warnings, nil
	}

	block, w, err := vorbiscomment.Decode(token.FromBuffer(body[skip:]))
	warnings = append(warnings, w...)
	if err != nil {
		return warnings, format.NewError(format.DecodeError, "ogg.Parse", err)
	}
	facts.AddTagSystem(format.Vorbis)
	facts.SetTool(block.Vendor)
	for _, c := range block.Comments {
		if c.Key == "METADATA_BLOCK_PICTURE" {
			pic, err := vorbiscomment.DecodeBase64Picture(c.Value, opts.SkipCovers)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "ogg.Parse",
					"malformed METADATA_BLOCK_PICTURE: %v", err))
				continue
			}
			emit(format.Vorbis, c.Key, nativetag.PictureValue(pic))
			continue
		}
		emit(format.Vorbis, c.Key, nativetag.String(c.Value))
	}
	return warnings, nil
}

// identifyCodec inspects the identification packet's magic and records
// what format facts it can. tagsSupported reports whether this package
// knows the comment packet's magic-prefix length for that codec.
func identifyCodec(pkt []byte, facts *format.Facts) (codec string, tagsSupported bool) {
	switch {
	case len(pkt) >= 7 && pkt[0] == 1 && string(pkt[1:7]) == "vorbis":
		facts.SetCodec("Vorbis")
		if len(pkt) >= 16 {
			facts.SetNumChannels(int(pkt[11]))
			facts.SetSampleRate(int(binary.LittleEndian.Uint32(pkt[12:16])))
		}
		return "vorbis", true
	case len(pkt) >= 8 && string(pkt[0:8]) == "OpusHead":
		facts.SetCodec("Opus")
		if len(pkt) >= 10 {
			facts.SetNumChannels(int(pkt[9]))
		}
		facts.SetSampleRate(48000) // Opus always decodes at 48kHz regardless of the input rate field
		return "opus", true
	case len(pkt) >= 8 && string(pkt[0:8]) == "Speex   ":
		facts.SetCodec("Speex")
		return "speex", false
	case len(pkt) >= 4 && string(pkt[0:4]) == "fLaC":
		facts.SetCodec("FLAC")
		facts.SetLossless(true)
		return "flac-in-ogg", false
	}
	return "", false
}

// commentBodyOffset returns the bytes following the comment packet's own
// magic prefix, positioned exactly where vorbiscomment.Decode expects to
// start (the vendor-length field).
func commentBodyOffset(codec string, pkt []byte) ([]byte, int) {
	switch codec {
	case "vorbis":
		return pkt, 7 // 1-byte packet type + "vorbis"
	case "opus":
		return pkt, 8 // "OpusTags"
	}
	return pkt, len(pkt)
}

// readPacket reassembles one logical packet from contiguous Ogg pages,
// peeking each page header to decide whether it continues the current
// packet before consuming it — the forward-only equivalent of the
// teacher's "read the page, then rewind if it wasn't a continuation"
// approach.
func readPacket(tok token.Tokenizer, first bool) ([]byte, []format.Warning, error) {
	var buf []byte
	var warnings []format.Warning
	firstPage := first

	for {
		head, err := tok.PeekBytes(pageHeaderSize)
		if err != nil {
			if len(buf) > 0 {
				return buf, warnings, nil
			}
			return nil, warnings, err
		}
		if string(head[0:4]) != "OggS" {
			return nil, warnings, errNotOgg
		}
		headerType := head[5]
		continuation := headerType&0x1 != 0
		if !(firstPage || continuation) {
			break
		}
		firstPage = false

		if err := tok.Skip(pageHeaderSize); err != nil {
			return nil, warnings, err
		}
		nSeg := int(head[26])
		segments, err := tok.ReadBytes(nSeg)
		if err != nil {
			return nil, warnings, err
		}
		pageSize := 0
		for _, s := range segments {
			pageSize += int(s)
		}
		data, err := tok.ReadBytes(pageSize)
		if err != nil {
			return nil, warnings, err
		}
		buf = append(buf, data...)

		// A page whose final segment is shorter than 255 bytes terminates
		// the packet; only a full 255-byte final lacing value means the
		// packet continues onto the next page.
		if nSeg == 0 || segments[nSeg-1] != 255 {
			break
		}
	}
	return buf, warnings, nil
}

type oggErr string

func (e oggErr) Error() string { return string(e) }

var (
	errNotOgg       = oggErr("missing \"OggS\" capture pattern")
	errUnknownCodec = oggErr("unrecognized Ogg identification packet")
)
