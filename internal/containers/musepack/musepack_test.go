package musepack

import (
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
)

func TestParseSV7DecodesSampleRate(t *testing.T) {
	buf := []byte{'M', 'P', '+', 0x00, 0x00, 0x00, 0x00, 0x00} // srIdx 0 -> 44100
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Codec != "Musepack" {
		t.Errorf("Codec = %q, want Musepack", facts.Codec)
	}
	if facts.CodecProfile != "SV7" {
		t.Errorf("CodecProfile = %q, want SV7", facts.CodecProfile)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2 (Musepack is always stereo)", facts.NumChannels)
	}
}

func TestParseSV8DecodesStreamHeader(t *testing.T) {
	body := []byte{
		0, 0, 0, 0, // CRC
		0,    // stream version
		0x05, // sample count VLQ (5)
		0x00, // beginning silence VLQ (0)
		0x00, 0x10, // srIdx=0 (44100), channels field=1 -> 2 channels
	}
	buf := append([]byte{'M', 'P', 'C', 'K'}, 'S', 'H', byte(len(body)+3))
	buf = append(buf, body...)

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.CodecProfile != "SV8" {
		t.Errorf("CodecProfile = %q, want SV8", facts.CodecProfile)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer([]byte("XXXXXXXX")), facts, containers.Options{}, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
