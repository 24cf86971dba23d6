package vorbiscomment

import "encoding/binary"

var leOrder = binary.LittleEndian
