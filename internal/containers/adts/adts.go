// Package adts decodes a raw AAC bitstream framed in ADTS headers
// (spec.md §4.4): no container wraps it, so format facts come entirely
// from the first frame header, with a bounded scan over subsequent
// frames for an average-bitrate estimate, mirroring the teacher-adjacent
// internal/containers/mpeg package's own frame-scan/duration-estimate
// shape (no teacher file covers AAC directly; the sampling-frequency
// table and bit layout are grounded in ausocean-av's aac/lex.go
// (other_examples/05c01d66_*)).
package adts

import (
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
)

// maxScanFrames bounds the average-bitrate scan, matching mpeg.Parse's
// reasoning: a forward-only source should never be forced to read every
// frame just to report format facts.
const maxScanFrames = 4000

// samplesPerFrame is fixed for ADTS: one raw data block of 1024 PCM
// samples per AAC frame (the "number of raw data blocks" field lets
// several be concatenated, which this decoder doesn't special-case).
const samplesPerFrame = 1024

var sampleRates = [13]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

var profileNames = [4]string{"AAC Main", "AAC LC", "AAC SSR", "AAC LTP"}

type adtsHeader struct {
	profile    int
	sampleRate int
	channels   int
	frameLen   int
}

// parseHeader decodes a 7-byte ADTS fixed+variable header (the optional
// 2-byte CRC that follows when protection_absent is clear is not read
// here; the caller only needs frameLen to skip to the next frame).
func parseHeader(b []byte) (adtsHeader, bool) {
	if len(b) < 7 {
		return adtsHeader{}, false
	}
	if b[0] != 0xFF || b[1]&0xF0 != 0xF0 {
		return adtsHeader{}, false
	}
	profile := int(b[2] >> 6)
	freqIdx := int(b[2] >> 2 & 0x0F)
	channelConfig := int(b[2]&0x1)<<2 | int(b[3]>>6)
	frameLen := int(b[3]&0x03)<<11 | int(b[4])<<3 | int(b[5]>>5)

	if freqIdx >= len(sampleRates) || sampleRates[freqIdx] == 0 {
		return adtsHeader{}, false
	}
	if frameLen < 7 {
		return adtsHeader{}, false
	}
	return adtsHeader{
		profile:    profile,
		sampleRate: sampleRates[freqIdx],
		channels:   channelConfig,
		frameLen:   frameLen,
	}, true
}

// Parse scans tok for the first valid ADTS frame, decodes format facts
// from it, and estimates bitrate/duration from an average over up to
// maxScanFrames subsequent frames.
func Parse(tok token.Tokenizer, facts *format.Facts, _ containers.Options, _ containers.Emitter) ([]format.Warning, error) {
	var warnings []format.Warning

	first, consumed, found := scanForSync(tok)
	if !found {
		return warnings, format.NewError(format.DecodeError, "adts.Parse", errNoSync)
	}

	facts.SetCodec("AAC")
	if first.profile < len(profileNames) {
		facts.SetCodecProfile(profileNames[first.profile])
	}
	facts.SetSampleRate(first.sampleRate)
	facts.SetNumChannels(first.channels)

	totalBytes := consumed
	frameCount := 1
	for frameCount < maxScanFrames {
		peeked, err := tok.PeekBytes(7)
		if err != nil {
			break
		}
		h, ok := parseHeader(peeked)
		if !ok {
			if err := tok.Skip(1); err != nil {
				break
			}
			continue
		}
		if err := tok.Skip(int64(h.frameLen)); err != nil {
			break
		}
		totalBytes += h.frameLen
		frameCount++
	}

	facts.SetNumSamples(uint64(frameCount) * samplesPerFrame)
	if frameCount > 0 {
		avgFrameBytes := float64(totalBytes) / float64(frameCount)
		bitrate := avgFrameBytes * 8 * float64(first.sampleRate) / samplesPerFrame
		facts.SetBitrate(int(bitrate))
	}

	return warnings, nil
}

// scanForSync walks tok byte-by-byte until a valid ADTS frame header is
// found, returning the header, the number of bytes its frame occupies
// (consumed from tok), and whether one was found at all.
func scanForSync(tok token.Tokenizer) (adtsHeader, int, bool) {
	for {
		b, err := tok.PeekBytes(7)
		if err != nil {
			return adtsHeader{}, 0, false
		}
		if h, ok := parseHeader(b); ok {
			if err := tok.Skip(int64(h.frameLen)); err != nil {
				return adtsHeader{}, 0, false
			}
			return h, h.frameLen, true
		}
		if err := tok.Skip(1); err != nil {
			return adtsHeader{}, 0, false
		}
	}
}

type adtsErr string

func (e adtsErr) Error() string { return string(e) }

const errNoSync = adtsErr("no valid ADTS frame sync found")
