package aiff

import (
	"encoding/binary"
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

var minimalID3v2 = []byte("ID3\x03\x00\x00\x00\x00\x00\x00")

func chunk(id string, body []byte) []byte {
	c := make([]byte, 8, 8+len(body)+1)
	copy(c[0:4], id)
	binary.BigEndian.PutUint32(c[4:8], uint32(len(body)))
	c = append(c, body...)
	if len(body)%2 == 1 {
		c = append(c, 0)
	}
	return c
}

// extended80 encodes a float64 sample rate as an 80-bit IEEE-754 extended
// value, the inverse of extendedToFloat64, for building test fixtures.
func extended80(rate float64) []byte {
	b := make([]byte, 10)
	if rate == 0 {
		return b
	}
	exp := 0
	m := rate
	for m >= 1 {
		m /= 2
		exp++
	}
	for m < 0.5 {
		m *= 2
		exp--
	}
	mantissa := uint64(m * (1 << 63) * 2)
	binary.BigEndian.PutUint16(b[0:2], uint16(exp+16383-1))
	binary.BigEndian.PutUint64(b[2:10], mantissa)
	return b
}

func commBody(channels uint16, numFrames uint32, sampleSize uint16, rate float64) []byte {
	b := make([]byte, 18)
	binary.BigEndian.PutUint16(b[0:2], channels)
	binary.BigEndian.PutUint32(b[2:6], numFrames)
	binary.BigEndian.PutUint16(b[6:8], sampleSize)
	copy(b[8:18], extended80(rate))
	return b
}

func TestParseCOMMTextAndID3(t *testing.T) {
	body := chunk("COMM", commBody(2, 88200, 16, 44100))
	body = append(body, chunk("NAME", append([]byte("Test Track"), 0))...)
	body = append(body, chunk("ID3 ", minimalID3v2)...)

	buf := make([]byte, 8, 8+4+len(body))
	copy(buf[0:4], "FORM")
	binary.BigEndian.PutUint32(buf[4:8], uint32(4+len(body)))
	buf = append(buf, []byte("AIFF")...)
	buf = append(buf, body...)

	var got []string
	emit := func(system format.TagSystem, id string, v nativetag.Value) {
		if system == format.TagAIFF {
			got = append(got, id+"="+v.Str)
		}
	}

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, emit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
	if facts.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", facts.BitsPerSample)
	}
	if facts.NumSamples != 88200 {
		t.Errorf("NumSamples = %d, want 88200", facts.NumSamples)
	}
	if d := facts.SampleRate - 44100; d < -1 || d > 1 {
		t.Errorf("SampleRate = %d, want ~44100 (extended-precision round-trip)", facts.SampleRate)
	}
	if len(got) != 1 || got[0] != "NAME=Test Track" {
		t.Errorf("text tags = %v, want [NAME=Test Track]", got)
	}

	var gotID3 bool
	for _, ts := range facts.TagSystems {
		if ts == format.ID3v2_3 {
			gotID3 = true
		}
	}
	if !gotID3 {
		t.Error("expected the embedded ID3 chunk to be recorded as a tag system")
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer([]byte("XXXXXXXXXXXX")), facts, containers.Options{}, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
