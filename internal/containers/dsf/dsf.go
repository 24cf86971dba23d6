// Package dsf decodes a Sony DSF (DSD Stream File) container (spec.md
// §4.4): the "DSD " chunk for the metadata pointer, "fmt " for format
// facts, and, when present, an ID3v2 block at the offset the "DSD "
// chunk points to (DSF's tag storage, unlike WavPack/Musepack, is an
// ordinary ID3v2 block rather than APEv2). No teacher file covers DSF;
// the chunk layout is grounded in Sony's published DSF specification,
// and the embedded-ID3v2 handling reuses internal/containers/id3v2 the
// same way internal/containers/riff and .../aiff do for their own
// embedded tag chunks.
package dsf

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/containers/id3v2"
	"github.com/hvianna/music-metadata/internal/token"
)

// Parse reads the 28-byte "DSD " chunk, the "fmt " chunk that follows
// it, and then skips forward to the ID3v2 tag the "DSD " chunk's
// metadata pointer names, if any.
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	dsdHdr, err := tok.ReadBytes(28)
	if err != nil {
		return nil, err
	}
	if string(dsdHdr[0:4]) != "DSD " {
		return nil, format.NewError(format.DecodeError, "dsf.Parse", errNotDSF)
	}
	metadataPointer := binary.LittleEndian.Uint64(dsdHdr[20:28])

	facts.SetCodec("DSD")
	facts.SetLossless(true)

	fmtID, fmtSize, err := readChunkHeader(tok)
	if err != nil {
		return nil, err
	}
	var warnings []format.Warning
	if fmtID == "fmt " {
		w, err := readFmt(tok, fmtSize, facts)
		warnings = append(warnings, w...)
		if err != nil {
			warnings = append(warnings, format.Warnf(format.DecodeError, "dsf.Parse", "fmt chunk: %v", err))
			return warnings, nil
		}
	} else {
		warnings = append(warnings, format.Warnf(format.UnsupportedFeature, "dsf.Parse",
			"expected \"fmt \" chunk after \"DSD \", found %q", fmtID))
		if err := tok.Skip(int64(fmtSize) - 12); err != nil {
			return warnings, nil
		}
	}

	if metadataPointer == 0 {
		return warnings, nil
	}
	here := tok.Position()
	if int64(metadataPointer) < here {
		warnings = append(warnings, format.Warnf(format.DecodeError, "dsf.Parse",
			"metadata pointer %d precedes current position %d", metadataPointer, here))
		return warnings, nil
	}
	if err := tok.Skip(int64(metadataPointer) - here); err != nil {
		return warnings, nil
	}
	w, err := id3v2.Parse(tok, facts, opts, emit)
	warnings = append(warnings, w...)
	if err != nil {
		warnings = append(warnings, format.Warnf(format.DecodeError, "dsf.Parse", "embedded ID3v2: %v", err))
	}
	return warnings, nil
}

func readChunkHeader(tok token.Tokenizer) (id string, size uint64, err error) {
	b, err := tok.ReadBytes(12)
	if err != nil {
		return "", 0, err
	}
	return string(b[0:4]), binary.LittleEndian.Uint64(b[4:12]), nil
}

// readFmt decodes the "fmt " chunk: format version, format ID, channel
// type, channel count, sampling frequency, bits per sample, and sample
// count. The chunk's declared size includes its own 12-byte header.
func readFmt(tok token.Tokenizer, size uint64, facts *format.Facts) ([]format.Warning, error) {
	body, err := tok.ReadBytes(int(size) - 12)
	if err != nil {
		return nil, err
	}
	if len(body) < 40 {
		return nil, errShortFmt
	}
	channelNum := binary.LittleEndian.Uint32(body[12:16])
	samplingFreq := binary.LittleEndian.Uint32(body[16:20])
	bitsPerSample := binary.LittleEndian.Uint32(body[20:24])
	sampleCount := binary.LittleEndian.Uint64(body[24:32])

	facts.SetNumChannels(int(channelNum))
	facts.SetSampleRate(int(samplingFreq))
	facts.SetBitsPerSample(int(bitsPerSample))
	facts.SetNumSamples(sampleCount)
	if samplingFreq > 0 {
		facts.SetDuration(float64(sampleCount) / float64(samplingFreq))
	}
	return nil, nil
}

type dsfErr string

func (e dsfErr) Error() string { return string(e) }

const (
	errNotDSF   = dsfErr("missing \"DSD \" magic")
	errShortFmt = dsfErr("fmt chunk shorter than expected")
)
