package riff

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
	binary.LittleEndian.PutUint32(c[4:8], uint32(len(body)))
	c = append(c, body...)
	if len(body)%2 == 1 {
		c = append(c, 0)
	}
	return c
}

func fmtBody() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(b[2:4], 2)
	binary.LittleEndian.PutUint32(b[4:8], 44100)
	binary.LittleEndian.PutUint32(b[8:12], 176400)
	binary.LittleEndian.PutUint16(b[12:14], 4)
	binary.LittleEndian.PutUint16(b[14:16], 16)
	return b
}

func infoBody() []byte {
	body := []byte("INFO")
	body = append(body, chunk("INAM", append([]byte("Test Track"), 0))...)
	body = append(body, chunk("IART", append([]byte("Test Artist"), 0))...)
	return body
}

func TestParseFmtListAndID3(t *testing.T) {
	riffBody := chunk("fmt ", fmtBody())
	riffBody = append(riffBody, chunk("LIST", infoBody())...)
	riffBody = append(riffBody, chunk("id3 ", minimalID3v2)...)

	buf := make([]byte, 8, 8+4+len(riffBody))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(4+len(riffBody)))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, riffBody...)

	var got []string
	emit := func(system format.TagSystem, id string, v nativetag.Value) {
		if system == format.TagRIFF {
			got = append(got, id+"="+v.Str)
		}
	}

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, emit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Codec != "PCM" {
		t.Errorf("Codec = %q, want PCM", facts.Codec)
	}
	if !facts.Lossless {
		t.Error("Lossless = false, want true for PCM")
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
	if facts.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", facts.BitsPerSample)
	}
	if len(got) != 2 || got[0] != "INAM=Test Track" || got[1] != "IART=Test Artist" {
		t.Errorf("INFO tags = %v, want [INAM=Test Track IART=Test Artist]", got)
	}

	var gotID3 bool
	for _, ts := range facts.TagSystems {
		if ts == format.ID3v2_3 {
			gotID3 = true
		}
	}
	if !gotID3 {
		t.Error("expected the embedded id3 chunk to be recorded as a tag system")
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer([]byte("XXXXXXXXXXXX")), facts, containers.Options{}, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
