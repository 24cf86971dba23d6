package asf

import (
	"encoding/binary"
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

func utf16leBytes(s string) []byte {
	out, _ := utf16leDecoder.NewEncoder().Bytes([]byte(s))
	return append(out, 0, 0) // null terminator, included in ASF's declared length
}

func object(guid [16]byte, body []byte) []byte {
	b := make([]byte, 24, 24+len(body))
	copy(b[0:16], guid[:])
	binary.LittleEndian.PutUint64(b[16:24], uint64(24+len(body)))
	return append(b, body...)
}

func contentDescriptionBody(title, author string) []byte {
	fields := [][]byte{utf16leBytes(title), utf16leBytes(author), {}, {}, {}}
	lens := make([]byte, 10)
	for i, f := range fields {
		binary.LittleEndian.PutUint16(lens[i*2:i*2+2], uint16(len(f)))
	}
	body := lens
	for _, f := range fields {
		body = append(body, f...)
	}
	return body
}

func TestParseContentDescriptionAndFileProperties(t *testing.T) {
	cdBody := contentDescriptionBody("Test Title", "Test Author")

	fpBody := make([]byte, 80)
	binary.LittleEndian.PutUint64(fpBody[40:48], 20_000_000) // 2s of play duration, in 100ns units
	binary.LittleEndian.PutUint64(fpBody[56:64], 0)          // no preroll
	binary.LittleEndian.PutUint32(fpBody[76:80], 128000)

	children := object(guidContentDescription, cdBody)
	children = append(children, object(guidFileProperties, fpBody)...)

	buf := make([]byte, 30, 30+len(children))
	copy(buf[0:16], guidHeader[:])
	binary.LittleEndian.PutUint64(buf[16:24], uint64(30+len(children)))
	binary.LittleEndian.PutUint32(buf[24:28], 2) // numObjects
	buf = append(buf, children...)

	var got []string
	emit := func(system format.TagSystem, id string, v nativetag.Value) {
		if system == format.TagASF {
			got = append(got, id+"="+v.Str)
		}
	}

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, emit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.Codec != "WMA" {
		t.Errorf("Codec = %q, want WMA", facts.Codec)
	}
	if facts.Bitrate != 128000 {
		t.Errorf("Bitrate = %d, want 128000", facts.Bitrate)
	}
	if facts.Duration != 2.0 {
		t.Errorf("Duration = %v, want 2.0", facts.Duration)
	}
	if len(got) != 2 || got[0] != "Title=Test Title" || got[1] != "Author=Test Author" {
		t.Errorf("tags = %v, want [Title=Test Title Author=Test Author]", got)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(make([]byte, 24)), facts, containers.Options{}, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
