// Package flac decodes a FLAC stream's metadata blocks (spec.md §4.4):
// STREAMINFO for format facts, VORBIS_COMMENT for tags (via the shared
// internal/vorbiscomment decoder), and PICTURE for cover art. Grounded on
// the teacher's flac.go block loop (last-block flag bit, 24-bit block
// size, block-type dispatch), generalized from "only look at
// VORBIS_COMMENT" to also decode STREAMINFO and PICTURE, with the
// block-type enumeration and doc-comment register informed by
// mewkiz-flac's meta/meta.go (other_examples/93ed2487_*).
package flac

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/internal/vorbiscomment"
	"github.com/hvianna/music-metadata/nativetag"
)

// blockType mirrors the teacher's BlockType enumeration.
type blockType byte

const (
	blockStreamInfo    blockType = 0
	blockPadding       blockType = 1
	blockApplication   blockType = 2
	blockSeekTable     blockType = 3
	blockVorbisComment blockType = 4
	blockCueSheet      blockType = 5
	blockPicture       blockType = 6
)

// Parse reads the "fLaC" magic and every metadata block that follows,
// stopping at the last-block flag (the audio frames that follow are out
// of scope for this package).
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	magic, err := token.ReadString(tok, 4)
	if err != nil {
		return nil, err
	}
	if magic != "fLaC" {
		return nil, format.NewError(format.DecodeError, "flac.Parse", errNotFLAC)
	}

	facts.SetLossless(true)
	facts.SetCodec("FLAC")

	var warnings []format.Warning
	for {
		header, err := tok.ReadBytes(1)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "flac.Parse", "truncated metadata block header"))
			return warnings, nil
		}
		last := header[0]&0x80 != 0
		bt := blockType(header[0] &^ 0x80)

		sizeBytes, err := tok.ReadBytes(3)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "flac.Parse", "truncated metadata block size"))
			return warnings, nil
		}
		size := int(sizeBytes[0])<<16 | int(sizeBytes[1])<<8 | int(sizeBytes[2])

		w, err := parseBlock(tok, bt, size, facts, opts, emit)
		warnings = append(warnings, w...)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "flac.Parse", "block type %d: %v", bt, err))
			return warnings, nil
		}

		if last {
			break
		}
	}
	return warnings, nil
}

func parseBlock(tok token.Tokenizer, bt blockType, size int, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	switch bt {
	case blockStreamInfo:
		return nil, parseStreamInfo(tok, size, facts)
	case blockVorbisComment:
		return parseVorbisComment(tok, size, facts, opts, emit)
	case blockPicture:
		return parsePicture(tok, size, opts, emit)
	default:
		return nil, tok.Skip(int64(size))
	}
}

func parseStreamInfo(tok token.Tokenizer, size int, facts *format.Facts) error {
	b, err := tok.ReadBytes(size)
	if err != nil {
		return err
	}
	if len(b) < 34 {
		return errShortStreamInfo
	}
	packed := binary.BigEndian.Uint64(b[10:18])
	sampleRate := int((packed >> 44) & 0xFFFFF)
	channels := int((packed>>41)&0x7) + 1
	bps := int((packed>>36)&0x1F) + 1
	totalSamples := packed & 0xFFFFFFFFF

	facts.SetSampleRate(sampleRate)
	facts.SetNumChannels(channels)
	facts.SetBitsPerSample(bps)
	facts.SetNumSamples(totalSamples)

	var md5 [16]byte
	copy(md5[:], b[18:34])
	facts.SetAudioMD5(md5)
	return nil
}

func parseVorbisComment(tok token.Tokenizer, size int, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	body, err := tok.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	block, warnings, err := vorbiscomment.Decode(token.FromBuffer(body))
	if err != nil {
		return warnings, err
	}
	facts.AddTagSystem(format.Vorbis)
	facts.SetTool(block.Vendor)
	for _, c := range block.Comments {
		if c.Key == "METADATA_BLOCK_PICTURE" {
			pic, err := vorbiscomment.DecodeBase64Picture(c.Value, opts.SkipCovers)
			if err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "flac.parseVorbisComment",
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

func parsePicture(tok token.Tokenizer, size int, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	body, err := tok.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	pic, err := vorbiscomment.DecodePicture(token.FromBuffer(body), opts.SkipCovers)
	if err != nil {
		return nil, err
	}
	emit(format.Vorbis, "METADATA_BLOCK_PICTURE", nativetag.PictureValue(pic))
	return nil, nil
}

type flacErr string

func (e flacErr) Error() string { return string(e) }

const (
	errNotFLAC          = flacErr("missing \"fLaC\" magic")
	errShortStreamInfo  = flacErr("STREAMINFO block shorter than 34 bytes")
)
