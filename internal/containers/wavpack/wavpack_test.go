package wavpack

import (
	"encoding/binary"
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
)

// makeHeader builds a 32-byte WavPack block header with the given total
// sample count and flags word; the remaining fields aren't read by Parse.
func makeHeader(totalSamples uint32, flags uint32) []byte {
	b := make([]byte, blockHeaderSize)
	copy(b[0:4], "wvpk")
	binary.LittleEndian.PutUint32(b[12:16], totalSamples)
	binary.LittleEndian.PutUint32(b[24:28], flags)
	return b
}

func TestParseLosslessStereo16Bit(t *testing.T) {
	// bytesStored=1 (16-bit), shift=0, sample-rate index 9 (44100), hybrid clear.
	flags := uint32(1) | uint32(9)<<flagSampleRateShift
	buf := makeHeader(88200, flags)

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Codec != "WavPack" {
		t.Errorf("Codec = %q, want WavPack", facts.Codec)
	}
	if !facts.Lossless {
		t.Error("Lossless = false, want true (hybrid flag clear)")
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
	if facts.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", facts.BitsPerSample)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
	if facts.NumSamples != 88200 {
		t.Errorf("NumSamples = %d, want 88200", facts.NumSamples)
	}
	if facts.Duration != 2.0 {
		t.Errorf("Duration = %v, want 2.0", facts.Duration)
	}
}

func TestParseMonoHybrid(t *testing.T) {
	flags := uint32(1) | flagMono | 0x8 | uint32(9)<<flagSampleRateShift
	buf := makeHeader(44100, flags)

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Lossless {
		t.Error("Lossless = true, want false (hybrid flag set)")
	}
	if facts.NumChannels != 1 {
		t.Errorf("NumChannels = %d, want 1", facts.NumChannels)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := make([]byte, blockHeaderSize)
	copy(buf, "xxxx")
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
