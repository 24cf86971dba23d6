package apeitem

import (
	"encoding/binary"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/token"
)

const (
	Magic      = "APETAGEX"
	FooterSize = 32
)

// Footer is the 32-byte APEv2 header/footer record.
type Footer struct {
	Version   uint32
	TagSize   uint32 // size of the tag body + footer (and header, if present), following this field's conventions
	ItemCount uint32
	HasHeader bool
	IsHeader  bool // true when this 32-byte record is itself the leading header rather than the trailing footer
	ReadOnly  bool
}

// ReadFooter reads a 32-byte APEv2 header-or-footer record, positioned at
// its first byte, and validates the "APETAGEX" magic.
func ReadFooter(tok token.Tokenizer) (Footer, error) {
	magic, err := token.ReadString(tok, 8)
	if err != nil {
		return Footer{}, err
	}
	if magic != Magic {
		return Footer{}, format.NewError(format.DecodeError, "apeitem.ReadFooter", errBadMagic)
	}
	version, err := token.ReadUint[uint32](tok, 4, binary.LittleEndian)
	if err != nil {
		return Footer{}, err
	}
	tagSize, err := token.ReadUint[uint32](tok, 4, binary.LittleEndian)
	if err != nil {
		return Footer{}, err
	}
	itemCount, err := token.ReadUint[uint32](tok, 4, binary.LittleEndian)
	if err != nil {
		return Footer{}, err
	}
	flags, err := token.ReadUint[uint32](tok, 4, binary.LittleEndian)
	if err != nil {
		return Footer{}, err
	}
	if err := tok.Skip(8); err != nil { // reserved
		return Footer{}, err
	}
	return Footer{
		Version:   version,
		TagSize:   tagSize,
		ItemCount: itemCount,
		HasHeader: flags&(1<<31) != 0,
		IsHeader:  flags&(1<<29) != 0,
		ReadOnly:  flags&(1<<0) != 0,
	}, nil
}

type apeErr string

func (e apeErr) Error() string { return string(e) }

var errBadMagic = apeErr("missing APETAGEX magic")
