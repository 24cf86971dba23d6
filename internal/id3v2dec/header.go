// Package id3v2dec is the shared ID3v2.{2,3,4} header/frame decoder, used
// directly by internal/containers/id3v2, through which the MP3 envelope and
// the RIFF, AIFF, DSF and DSDIFF embedded ID3v2 blocks reach it (spec.md
// §4.4). It is
// grounded on the teacher's id3v2.go/id3v2frames.go, generalized from
// io.Reader free functions to the token.Tokenizer abstraction and
// extended with TXXX/WXXX/PRIV/UFID/POPM/MCDI handling the teacher
// doesn't implement.
package id3v2dec

import (
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
)

// Header is the decoded ID3v2 tag header.
type Header struct {
	Version           format.TagSystem
	Unsynchronisation bool
	ExtendedHeader    bool
	Experimental      bool
	Footer            bool
	Size              int // tag size, excluding the 10-byte header
}

// ReadHeader reads the 10-byte ID3v2 header, matching the teacher's
// readID3v2Header: magic "ID3", one version byte (2, 3 or 4), one
// (ignored) revision byte, a flags byte, and a 4-byte syncsafe size.
func ReadHeader(tok token.Tokenizer) (Header, error) {
	b, err := tok.ReadBytes(10)
	if err != nil {
		return Header{}, err
	}
	if string(b[0:3]) != "ID3" {
		return Header{}, format.NewError(format.DecodeError, "id3v2dec.ReadHeader", errNotID3)
	}

	var vers format.TagSystem
	switch b[3] {
	case 2:
		vers = format.ID3v2_2
	case 3:
		vers = format.ID3v2_3
	case 4:
		vers = format.ID3v2_4
	default:
		return Header{}, format.NewError(format.UnsupportedFeature, "id3v2dec.ReadHeader", errBadVersion)
	}

	flags := b[5]
	size := 0
	for _, x := range b[6:10] {
		size = size<<7 | int(x&0x7f)
	}

	return Header{
		Version:           vers,
		Unsynchronisation: flags&0x80 != 0,
		ExtendedHeader:    flags&0x40 != 0,
		Experimental:      flags&0x20 != 0,
		Footer:            flags&0x10 != 0,
		Size:              size,
	}, nil
}

var (
	errNotID3     = idErr("not an ID3v2 tag")
	errBadVersion = idErr("unsupported ID3v2 major version")
)

type idErr string

func (e idErr) Error() string { return string(e) }

// removeUnsync strips the 0x00 byte the ID3v2 unsynchronisation scheme
// inserts after every 0xFF byte, matching the teacher's unsynchroniser
// io.Reader filter in id3v2.go but applied to an already-buffered slice.
func removeUnsync(b []byte) []byte {
	out := make([]byte, 0, len(b))
	prevFF := false
	for _, x := range b {
		if prevFF && x == 0x00 {
			prevFF = false
			continue
		}
		out = append(out, x)
		prevFF = x == 0xFF
	}
	return out
}
