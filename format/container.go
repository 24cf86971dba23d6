// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package format describes the audio-format facts and container/tag-system
// vocabulary shared by every parser in this module.
package format

// Container is the outer file format that frames audio and metadata. The
// set is closed: adding a new container means adding both a member here
// and a parser under internal/containers.
type Container string

// Supported containers, per spec.
const (
	MPEG      Container = "mpeg"
	APEv2     Container = "apev2"
	MP4       Container = "mp4"
	ASF       Container = "asf"
	FLAC      Container = "flac"
	Ogg       Container = "ogg"
	AIFF      Container = "aiff"
	WavPack   Container = "wavpack"
	RIFF      Container = "riff"
	Musepack  Container = "musepack"
	DSF       Container = "dsf"
	DSDIFF    Container = "dsdiff"
	ADTS      Container = "adts"
	Undefined Container = ""
)

// TagSystem is a metadata encoding: a way of representing tags, distinct
// from the container that frames the audio. Several containers can embed
// the same tag system (e.g. a RIFF or DSF file carrying an ID3v2 block).
type TagSystem string

// Closed set of supported tag systems.
const (
	ID3v1    TagSystem = "ID3v1"
	ID3v2_2  TagSystem = "ID3v2.2"
	ID3v2_3  TagSystem = "ID3v2.3"
	ID3v2_4  TagSystem = "ID3v2.4"
	TagAPEv2 TagSystem = "APEv2"
	Vorbis   TagSystem = "vorbis"
	ITunes   TagSystem = "iTunes"
	TagASF   TagSystem = "asf"
	TagRIFF  TagSystem = "RIFF"
	TagAIFF  TagSystem = "AIFF"
	Matroska TagSystem = "matroska"
)
