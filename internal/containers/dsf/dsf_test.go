package dsf

import (
	"encoding/binary"
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/containers"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// minimalID3v2 is a header-only ID3v2.3 tag: no frames.
var minimalID3v2 = []byte("ID3\x03\x00\x00\x00\x00\x00\x00")

func dsdHeader(totalFileSize, metadataPointer uint64) []byte {
	b := make([]byte, 28)
	copy(b[0:4], "DSD ")
	binary.LittleEndian.PutUint64(b[4:12], 28) // chunk size
	binary.LittleEndian.PutUint64(b[12:20], totalFileSize)
	binary.LittleEndian.PutUint64(b[20:28], metadataPointer)
	return b
}

func fmtChunk(channels, bitsPerSample uint32, sampleRate, sampleCount uint64) []byte {
	body := make([]byte, 40)
	binary.LittleEndian.PutUint32(body[12:16], channels)
	binary.LittleEndian.PutUint32(body[16:20], uint32(sampleRate))
	binary.LittleEndian.PutUint32(body[20:24], bitsPerSample)
	binary.LittleEndian.PutUint64(body[24:32], sampleCount)

	chunk := make([]byte, 12)
	copy(chunk[0:4], "fmt ")
	binary.LittleEndian.PutUint64(chunk[4:12], uint64(12+len(body)))
	return append(chunk, body...)
}

func noopEmit(format.TagSystem, string, nativetag.Value) {}

func TestParseFormatFactsNoTag(t *testing.T) {
	buf := append(dsdHeader(0, 0), fmtChunk(2, 1, 2822400, 5644800)...)

	facts := &format.Facts{}
	if _, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, noopEmit); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
}

func TestParseFormatFactsAndEmbeddedID3(t *testing.T) {
	fmtBytes := fmtChunk(2, 1, 2822400, 5644800)
	metadataPointer := uint64(28 + len(fmtBytes))
	buf := append(dsdHeader(0, metadataPointer), fmtBytes...)
	buf = append(buf, minimalID3v2...)

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
	if facts.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", facts.NumChannels)
	}
	if facts.SampleRate != 2822400 {
		t.Errorf("SampleRate = %d, want 2822400", facts.SampleRate)
	}
	if facts.Duration != 2.0 {
		t.Errorf("Duration = %v, want 2.0", facts.Duration)
	}

	var gotID3 bool
	for _, ts := range facts.TagSystems {
		if ts == format.ID3v2_3 {
			gotID3 = true
		}
	}
	if !gotID3 {
		t.Error("expected the embedded ID3v2 tag to be recorded as a tag system")
	}
}

func TestParseMetadataPointerZeroSkipsID3(t *testing.T) {
	buf := append(dsdHeader(0, 0), fmtChunk(2, 1, 44100, 88200)...)
	buf = append(buf, minimalID3v2...) // present in the file but not pointed to

	facts := &format.Facts{}
	_, err := Parse(token.FromBuffer(buf), facts, containers.Options{}, noopEmit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, ts := range facts.TagSystems {
		if ts == format.ID3v2_3 {
			t.Error("did not expect ID3v2 to be read when metadataPointer is 0")
		}
	}
}
