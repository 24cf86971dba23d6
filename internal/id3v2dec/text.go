package id3v2dec

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/hvianna/music-metadata/format"
)

// decodeText decodes an ID3v2 text payload given its leading encoding
// byte, matching the teacher's decodeText switch but delegating the
// actual charset conversion to golang.org/x/text instead of a hand-rolled
// byte-to-rune loop (ISO-8859-1) and utf16.Decode call (UTF-16).
func decodeText(enc byte, b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	var enc2 encoding.Encoding
	switch enc {
	case 0: // ISO-8859-1
		enc2 = charmap.ISO8859_1
	case 1: // UTF-16 with BOM
		enc2 = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case 2: // UTF-16BE, no BOM
		enc2 = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case 3: // UTF-8
		return string(b), nil
	default:
		return "", format.NewError(format.DecodeError, "id3v2dec.decodeText", errBadEncoding)
	}
	out, err := enc2.NewDecoder().Bytes(b)
	if err != nil {
		return "", format.NewError(format.DecodeError, "id3v2dec.decodeText", err)
	}
	return string(out), nil
}

var errBadEncoding = idErr("invalid ID3v2 text encoding byte")

// encodingDelim returns the NUL-terminator width for a text encoding,
// matching the teacher's encodingDelim.
func encodingDelim(enc byte) ([]byte, error) {
	switch enc {
	case 0, 3:
		return []byte{0}, nil
	case 1, 2:
		return []byte{0, 0}, nil
	default:
		return nil, format.NewError(format.DecodeError, "id3v2dec.encodingDelim", errBadEncoding)
	}
}

// splitOnce splits b at the first encoding-aware NUL terminator,
// matching the teacher's dataSplit.
func splitOnce(b []byte, enc byte) ([][]byte, error) {
	delim, err := encodingDelim(enc)
	if err != nil {
		return nil, err
	}
	parts := bytes.SplitN(b, delim, 2)
	if len(parts) <= 1 {
		return parts, nil
	}
	if len(parts[1]) > 0 && parts[1][0] == 0 {
		parts[1] = parts[1][1:]
	}
	return parts, nil
}
