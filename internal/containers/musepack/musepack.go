// Package musepack decodes a Musepack stream's format facts (spec.md
// §4.4), covering both the legacy SV7 "MP+" header and the packet-based
// SV8 "MPCK" stream header. Tag storage in both stream versions is an
// APEv2 footer, handled uniformly by the trailer scanner and
// internal/apeitem, not by this package. No teacher file covers
// Musepack; the SV8 packet framing (two-letter key + a MIDI-style
// variable-length-quantity size that includes its own key+size bytes)
// is grounded in the published Musepack SV8 stream specification that
// reference decoders (e.g. libmpcdec's reader/streaminfo.c) implement.
package musepack

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
)

var sv7SampleRates = [4]int{44100, 48000, 37800, 32000}

// Parse dispatches on the 4-byte magic internal/sniff already peeked:
// "MPCK" selects the SV8 packet reader, anything starting "MP+" the
// legacy SV7 fixed header.
func Parse(tok token.Tokenizer, facts *format.Facts, opts containers.Options, emit containers.Emitter) ([]format.Warning, error) {
	magic, err := tok.PeekBytes(4)
	if err != nil {
		return nil, err
	}
	facts.SetCodec("Musepack")
	facts.SetLossless(true)

	if string(magic) == "MPCK" {
		return parseSV8(tok, facts)
	}
	facts.SetNumChannels(2) // SV7 encodes only stereo/joint-stereo streams
	return parseSV7(tok, facts)
}

// parseSV7 reads the legacy 3-byte "MP+" magic, a stream-version byte,
// and the first 32-bit header word, which packs a 2-bit sample-rate
// index ahead of profile/frame-count fields this decoder doesn't attempt
// to interpret: the true frame count lives further into the stream at an
// offset that varies with the optional fields preceding it, so no duration
// is reported for SV7 streams (no bitrate is set either, so
// Facts.DeriveDuration has nothing to fall back on).
func parseSV7(tok token.Tokenizer, facts *format.Facts) ([]format.Warning, error) {
	b, err := tok.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	if string(b[0:3]) != "MP+" {
		return nil, format.NewError(format.DecodeError, "musepack.parseSV7", errNotMusepack)
	}
	facts.SetCodecProfile("SV7")

	word := binary.LittleEndian.Uint32(b[4:8])
	srIdx := int(word>>17) & 0x3
	facts.SetSampleRate(sv7SampleRates[srIdx])
	return nil, nil
}

// parseSV8 walks SV8's packet stream looking for the mandatory "SH"
// (Stream Header) packet, which is always first, then stops: later
// packets ("RG" replay gain, "SO" seek-table offset, "AP" audio, ...)
// carry nothing format.Facts needs.
func parseSV8(tok token.Tokenizer, facts *format.Facts) ([]format.Warning, error) {
	facts.SetCodecProfile("SV8")
	magic, err := tok.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != "MPCK" {
		return nil, format.NewError(format.DecodeError, "musepack.parseSV8", errNotMusepack)
	}

	var warnings []format.Warning
	for i := 0; i < 16; i++ { // SH is always near the front; bound the scan regardless
		key, err := token.ReadString(tok, 2)
		if err != nil {
			break
		}
		size, sizeLen, err := readVLQ(tok)
		if err != nil {
			break
		}
		bodyLen := int64(size) - 2 - int64(sizeLen)
		if bodyLen < 0 {
			warnings = append(warnings, format.Warnf(format.DecodeError, "musepack.parseSV8",
				"packet %q declares size smaller than its own header", key))
			break
		}

		if key == "SH" {
			if err := readStreamHeader(tok, bodyLen, facts); err != nil {
				warnings = append(warnings, format.Warnf(format.DecodeError, "musepack.parseSV8", "SH packet: %v", err))
			}
			break
		}
		if key == "SE" || key == "AP" {
			break // stream end or audio packet: no more header packets follow
		}
		if err := tok.Skip(bodyLen); err != nil {
			break
		}
	}
	return warnings, nil
}

// readStreamHeader decodes the fields of SV8's Stream Header packet this
// package cares about: the encoder CRC and version are skipped, then a
// VLQ sample count, a VLQ beginning-silence count, and a 2-byte word
// packing sample-rate index, max band, channel count, and mid/side flag.
func readStreamHeader(tok token.Tokenizer, bodyLen int64, facts *format.Facts) error {
	body, err := tok.ReadBytes(int(bodyLen))
	if err != nil {
		return err
	}
	r := token.FromBuffer(body)
	if err := r.Skip(5); err != nil { // 4-byte CRC + 1-byte stream version
		return err
	}
	if _, _, err := readVLQFrom(r); err != nil { // sample count
		return err
	}
	if _, _, err := readVLQFrom(r); err != nil { // beginning silence
		return err
	}
	word, err := token.ReadUint[uint16](r, 2, binary.BigEndian)
	if err != nil {
		return err
	}
	srIdx := int(word>>13) & 0x7
	channels := int(word>>4)&0xF + 1
	rates := [8]int{44100, 48000, 37800, 32000, 0, 0, 0, 0}
	if srIdx < len(rates) && rates[srIdx] > 0 {
		facts.SetSampleRate(rates[srIdx])
	}
	facts.SetNumChannels(channels)
	return nil
}

// readVLQ reads a MIDI-style variable-length quantity (7 bits per byte,
// MSB-first, continuation indicated by the top bit) from tok, returning
// the decoded value and the number of bytes it occupied.
func readVLQ(tok token.Tokenizer) (uint64, int, error) {
	return readVLQFrom(tok)
}

func readVLQFrom(tok token.Tokenizer) (uint64, int, error) {
	var v uint64
	for i := 0; i < 10; i++ {
		b, err := tok.ReadBytes(1)
		if err != nil {
			return 0, 0, err
		}
		v = v<<7 | uint64(b[0]&0x7F)
		if b[0]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, format.NewError(format.DecodeError, "musepack.readVLQ", errVLQTooLong)
}

type musepackErr string

func (e musepackErr) Error() string { return string(e) }

const (
	errNotMusepack = musepackErr("missing Musepack magic")
	errVLQTooLong  = musepackErr("variable-length quantity exceeds 10 bytes")
)
