// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mbz extracts MusicBrainz Picard identifiers from a parsed
// common.View. See https://picard.musicbrainz.org/docs/mappings/ for more
// information. Grounded on the teacher's mbz/mbz.go tag-name matching
// table, adapted from scanning a raw tag.Metadata.Raw() map (keyed by
// each tag system's own frame IDs) to reading the already-normalized
// common.View the mapper (internal/mapper) produces, since every tag
// system's MusicBrainz/AcoustID fields are mapped into the same View
// fields regardless of source.
package mbz

import (
	"github.com/google/uuid"

	"github.com/hvianna/music-metadata/common"
)

// Info is a structure which contains MusicBrainz identifier information.
type Info struct {
	AcoustID     string
	Album        string
	AlbumArtist  string
	Artist       string
	ReleaseGroup string
	Track        string
}

// Extract reads the MusicBrainz Picard and AcoustID identifiers out of a
// parsed common.View. Fields that aren't well-formed UUIDs (MusicBrainz
// IDs are always UUIDs; AcoustID fingerprint IDs are too) are dropped
// rather than passed through, since a malformed tag value is more likely
// leftover garbage from a careless tagger than a genuine identifier.
func Extract(v *common.View) *Info {
	if v == nil {
		return &Info{}
	}
	return &Info{
		AcoustID:     validUUID(v.AcoustID),
		Album:        validUUID(v.MusicBrainzAlbumID),
		AlbumArtist:  validUUID(v.MusicBrainzAlbumArtistID),
		Artist:       validUUID(v.MusicBrainzArtistID),
		ReleaseGroup: validUUID(v.MusicBrainzReleaseGroupID),
		Track:        validUUID(v.MusicBrainzTrackID),
	}
}

func validUUID(s string) string {
	if s == "" {
		return ""
	}
	if _, err := uuid.Parse(s); err != nil {
		return ""
	}
	return s
}
