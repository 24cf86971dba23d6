package mpeg

import (
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/containers/id3v2"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// id3v23Frame builds one ID3v2.3 frame: a 4-byte ID, a 4-byte big-endian
// size, 2 zero flag bytes, then the payload.
func id3v23Frame(id string, payload []byte) []byte {
	b := make([]byte, 10, 10+len(payload))
	copy(b[0:4], id)
	size := len(payload)
	b[4] = byte(size >> 24)
	b[5] = byte(size >> 16)
	b[6] = byte(size >> 8)
	b[7] = byte(size)
	return append(b, payload...)
}

// textFrame prepends the ISO-8859-1 encoding byte text frames require.
func textFrame(id, text string) []byte {
	return id3v23Frame(id, append([]byte{0x00}, text...))
}

func id3v23Tag(frames ...[]byte) []byte {
	var body []byte
	for _, f := range frames {
		body = append(body, f...)
	}
	header := make([]byte, 10, 10+len(body))
	copy(header[0:3], "ID3")
	header[3] = 3 // version 2.3
	size := len(body)
	header[6] = byte(size >> 21 & 0x7f)
	header[7] = byte(size >> 14 & 0x7f)
	header[8] = byte(size >> 7 & 0x7f)
	header[9] = byte(size & 0x7f)
	return append(header, body...)
}

// mp3Frame128Stereo44100 is a single MPEG-1 Layer III frame header for
// 128kbps/44100Hz/Stereo (0xFFFB9000, the common "no CRC" sync pattern),
// followed by zero filler up to its 417-byte frame length. Parse steps
// past only the 4-byte header, so its scan loop walks the zero filler
// byte by byte, finds no further frame header, and stops at the end of
// the buffer.
func mp3Frame128Stereo44100() []byte {
	header := []byte{0xFF, 0xFB, 0x90, 0x00}
	frameLen := frameLengthMult["1III"] * 128 * 1000 / 44100
	return append(header, make([]byte, frameLen-len(header))...)
}

// TestParseMP3CodecContainerAndID3v2 grounds spec.md §8 seed scenario 1:
// an MP3 with ID3v2.3 TIT2/TPE1/TRCK must report format.codec="MPEG 1
// Layer 3", format.container="MPEG", and the TRCK value verbatim.
func TestParseMP3CodecContainerAndID3v2(t *testing.T) {
	tag := id3v23Tag(
		textFrame("TIT2", "Hello"),
		textFrame("TPE1", "World"),
		textFrame("TRCK", "3/12"),
	)
	buf := append(tag, mp3Frame128Stereo44100()...)

	var native []nativetag.Value
	var nativeIDs []string
	emit := func(system format.TagSystem, id string, v nativetag.Value) {
		nativeIDs = append(nativeIDs, id)
		native = append(native, v)
	}

	tok := token.FromBuffer(buf)
	facts := &format.Facts{}
	copts := containers.Options{}

	if _, err := id3v2.Parse(tok, facts, copts, emit); err != nil {
		t.Fatalf("id3v2.Parse: %v", err)
	}
	facts.Container = format.MPEG

	if _, err := Parse(tok, facts, copts, emit); err != nil {
		t.Fatalf("mpeg.Parse: %v", err)
	}

	if facts.Codec != "MPEG 1 Layer 3" {
		t.Errorf("Codec = %q, want %q", facts.Codec, "MPEG 1 Layer 3")
	}
	if facts.Container != format.MPEG {
		t.Errorf("Container = %q, want %q", facts.Container, format.MPEG)
	}
	if facts.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", facts.SampleRate)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}

	want := map[string]string{"TIT2": "Hello", "TPE1": "World", "TRCK": "3/12"}
	got := map[string]string{}
	for i, id := range nativeIDs {
		got[id] = native[i].Str
	}
	for id, v := range want {
		if got[id] != v {
			t.Errorf("native %s = %q, want %q", id, got[id], v)
		}
	}
}

func TestParseNoSyncReturnsError(t *testing.T) {
	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(make([]byte, 16)), facts, containers.Options{}, nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
