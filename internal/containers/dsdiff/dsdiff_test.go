package dsdiff

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
	c := make([]byte, 12, 12+len(body)+1)
	copy(c[0:4], id)
	binary.BigEndian.PutUint64(c[4:12], uint64(len(body)))
	c = append(c, body...)
	if len(body)%2 == 1 {
		c = append(c, 0)
	}
	return c
}

func noopEmit(format.TagSystem, string, nativetag.Value) {}

func TestParsePropAndDIIN(t *testing.T) {
	fsValue := make([]byte, 4)
	binary.BigEndian.PutUint32(fsValue, 2822400)
	chnlValue := make([]byte, 2)
	binary.BigEndian.PutUint16(chnlValue, 2)

	sndBody := append([]byte("SND "), chunk("FS  ", fsValue)...)
	sndBody = append(sndBody, chunk("CHNL", chnlValue)...)
	sndBody = append(sndBody, chunk("CMPR", []byte("DSD "))...)

	diinBody := chunk("ID3 ", minimalID3v2)

	buf := append([]byte("FRM8"), make([]byte, 8)...)
	buf = append(buf, []byte("DSD ")...)
	buf = append(buf, chunk("PROP", sndBody)...)
	buf = append(buf, chunk("DIIN", diinBody)...)

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, noopEmit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Codec != "DSD" {
		t.Errorf("Codec = %q, want DSD", facts.Codec)
	}
	if !facts.Lossless {
		t.Error("Lossless = false, want true")
	}
	if facts.SampleRate != 2822400 {
		t.Errorf("SampleRate = %d, want 2822400", facts.SampleRate)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
	if facts.CodecProfile != "" {
		t.Errorf("CodecProfile = %q, want empty (plain DSD compression isn't a profile)", facts.CodecProfile)
	}

	var gotID3 bool
	for _, ts := range facts.TagSystems {
		if ts == format.ID3v2_3 {
			gotID3 = true
		}
	}
	if !gotID3 {
		t.Error("expected the embedded ID3v2 tag inside DIIN to be recorded")
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer([]byte("XXXXXXXXXXXX")), facts, containers.Options{}, noopEmit)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
