package adts

import (
	"bytes"
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// adtsFrame is a 7-byte ADTS header, AAC-LC, 44100 Hz, stereo, with
// frame_length set to 7 so each frame carries no payload.
var adtsFrame = []byte{0xFF, 0xF1, 0x50, 0x80, 0x00, 0xE0, 0x00}

func noopEmit(format.TagSystem, string, nativetag.Value) {}

func TestParseDecodesFirstFrame(t *testing.T) {
	buf := bytes.Repeat(adtsFrame, 5)
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, noopEmit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Codec != "AAC" {
		t.Errorf("Codec = %q, want AAC", facts.Codec)
	}
	if facts.CodecProfile != "AAC LC" {
		t.Errorf("CodecProfile = %q, want \"AAC LC\"", facts.CodecProfile)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
	if facts.NumSamples != 5*samplesPerFrame {
		t.Errorf("NumSamples = %d, want %d", facts.NumSamples, 5*samplesPerFrame)
	}
}

func TestParseSkipsJunkBeforeSync(t *testing.T) {
	buf := append([]byte{0x00, 0x01, 0x02}, bytes.Repeat(adtsFrame, 2)...)
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, noopEmit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
}

func TestParseNoSyncFails(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}), facts, containers.Options{}, noopEmit)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
