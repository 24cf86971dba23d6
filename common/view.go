// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package common implements the format-independent, normalized metadata
// record ("common view") that the mapper (internal/mapper) populates from
// a native tag stream.
package common

import "github.com/hvianna/music-metadata/nativetag"

// TrackDisc is a number paired with an optional total, e.g. track 3 of 12.
type TrackDisc struct {
	No int
	Of int
}

// Rating is a normalized opinion in [0,1], optionally attributed to a
// source (an email for ID3 POPM, a service name for a Vorbis RATING tag).
type Rating struct {
	Source string
	Rating float64
}

// Gain is a ReplayGain-style loudness adjustment expressed in both forms;
// the spec requires ratio = 10^(dB/20) whenever both are present.
type Gain struct {
	DB    float64
	Ratio float64
	dbSet bool
	ratioSet bool
}

// HasDB reports whether the decibel form has been populated.
func (g Gain) HasDB() bool { return g.dbSet }

// HasRatio reports whether the ratio form has been populated.
func (g Gain) HasRatio() bool { return g.ratioSet }

// SetDB records the decibel form of the gain.
func (g *Gain) SetDB(db float64) {
	g.DB = db
	g.dbSet = true
}

// SetRatio records the linear-ratio form of the gain.
func (g *Gain) SetRatio(ratio float64) {
	g.Ratio = ratio
	g.ratioSet = true
}

// Contributor is a named credit for a role that can have several people
// attached (composer, lyricist, performer, ...).
type Contributor struct {
	Role string
	Name string
}

// View is the sparse, normalized, cross-format metadata record. Scalar
// fields use zero values to mean "absent"; fields whose
// semantics permit repeats (per spec.md §3) are slices.
type View struct {
	Title   string
	Artist  string
	Artists []string
	AlbumArtist string
	Album   string

	Year        int
	Date        string
	OriginalDate string

	Track TrackDisc
	Disk  TrackDisc

	Genre   []string
	Picture []nativetag.Picture
	Comment string
	Composer string
	Lyrics   string

	SortTitle  string
	SortArtist string
	SortAlbum  string
	SortAlbumArtist string

	Work        string
	Contributors []Contributor

	Ratings []Rating

	BPM   int
	Mood  string
	Media string

	CatalogNumber []string

	TVEpisode      int
	TVEpisodeID    string
	TVNetwork      string
	TVSeason       int
	TVShow         string

	PodcastID  string
	PodcastURL string

	ReleaseStatus  string
	ReleaseType    []string
	ReleaseCountry string

	Script   string
	Language string

	Copyright string
	License   string

	EncodedBy  string
	EncoderSettings string

	Gapless bool

	Barcode string
	ISRC    []string

	MusicBrainzArtistID      string
	MusicBrainzAlbumID       string
	MusicBrainzAlbumArtistID string
	MusicBrainzTrackID       string
	MusicBrainzReleaseGroupID string
	MusicBrainzWorkID        string

	AcoustID string
	MusicIP  string

	ReplayGainTrackGain Gain
	ReplayGainTrackPeak Gain
	ReplayGainAlbumGain Gain
	ReplayGainAlbumPeak Gain
	ReplayGainUndo      [2]int

	Key string
}
