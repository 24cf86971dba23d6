package vorbiscomment

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
	"github.com/hvianna/music-metadata/nativetag"
)

// pictureTypeNames mirrors the FLAC/ID3v2 APIC picture-type enumeration
// (the two tag systems share it by design), so a FLAC PICTURE block and
// an ID3v2 APIC frame describe "front cover" identically in the common
// view.
var pictureTypeNames = map[uint32]string{
	0:  "Other",
	1:  "32x32 pixels 'file icon' (PNG only)",
	2:  "Other file icon",
	3:  "Cover (front)",
	4:  "Cover (back)",
	5:  "Leaflet page",
	6:  "Media (e.g. label side of CD)",
	7:  "Lead artist/lead performer/soloist",
	8:  "Artist/performer",
	9:  "Conductor",
	10: "Band/Orchestra",
	11: "Composer",
	12: "Lyricist/text writer",
	13: "Recording Location",
	14: "During recording",
	15: "During performance",
	16: "Movie/video screen capture",
	17: "A bright coloured fish",
	18: "Illustration",
	19: "Band/artist logotype",
	20: "Publisher/Studio logotype",
}

// DecodePicture decodes a FLAC PICTURE metadata-block payload (big-endian
// type/MIME-length/MIME/description-length/description/width/height/
// depth/colors/data-length/data), positioned at the block's first byte.
func DecodePicture(tok token.Tokenizer, skipCovers bool) (*nativetag.Picture, error) {
	picType, err := token.ReadUint[uint32](tok, 4, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	mimeLen, err := token.ReadUint[uint32](tok, 4, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	mimeType, err := token.ReadString(tok, int(mimeLen))
	if err != nil {
		return nil, err
	}
	descLen, err := token.ReadUint[uint32](tok, 4, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	desc, err := token.ReadString(tok, int(descLen))
	if err != nil {
		return nil, err
	}
	if err := tok.Skip(16); err != nil { // width, height, depth, colors used
		return nil, err
	}
	dataLen, err := token.ReadUint[uint32](tok, 4, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	if skipCovers {
		if err := tok.Skip(int64(dataLen)); err != nil {
			return nil, err
		}
		return &nativetag.Picture{MIMEType: mimeType, Description: desc, Type: pictureTypeNames[picType]}, nil
	}
	data, err := tok.ReadBytes(int(dataLen))
	if err != nil {
		return nil, err
	}
	return &nativetag.Picture{MIMEType: mimeType, Data: data, Description: desc, Type: pictureTypeNames[picType]}, nil
}

// DecodeBase64Picture decodes a METADATA_BLOCK_PICTURE Vorbis comment
// value: the same FLAC picture structure, base64-encoded as a single
// comment string.
func DecodeBase64Picture(value string, skipCovers bool) (*nativetag.Picture, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, format.NewError(format.DecodeError, "vorbiscomment.DecodeBase64Picture", err)
	}
	return DecodePicture(token.FromBuffer(raw), skipCovers)
}
