package mapper

import (
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/nativetag"
)

func TestApplyDuplicateArtistsPreserveOrder(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.Vorbis, "ARTIST", nativetag.String("A"))
	set.Append(format.Vorbis, "ARTIST", nativetag.String("B"))

	view, warnings := Apply(set)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if view.Artist != "A" {
		t.Errorf("Artist = %q, want %q (first value wins)", view.Artist, "A")
	}
	if got := view.Artists; len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Artists = %v, want [A B]", got)
	}
}

func TestApplyScalarConflictWarns(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.ID3v2_3, "TIT2", nativetag.String("Song One"))
	set.Append(format.ID3v2_3, "TIT2", nativetag.String("Song Two"))

	view, warnings := Apply(set)
	if view.Title != "Song One" {
		t.Errorf("Title = %q, want %q (first value wins)", view.Title, "Song One")
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one conflict warning", warnings)
	}
}

func TestApplyAPEv2KeyIsCaseInsensitive(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.TagAPEv2, "artist", nativetag.String("Lowercase Artist"))

	view, _ := Apply(set)
	if view.Artist != "Lowercase Artist" {
		t.Errorf("Artist = %q, want %q", view.Artist, "Lowercase Artist")
	}
}

func TestApplyReplayGainRatioDerivedFromDB(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.Vorbis, "REPLAYGAIN_TRACK_GAIN", nativetag.String("-6.00 dB"))

	view, _ := Apply(set)
	if !view.ReplayGainTrackGain.HasDB() || view.ReplayGainTrackGain.DB != -6.0 {
		t.Fatalf("ReplayGainTrackGain.DB = %v", view.ReplayGainTrackGain.DB)
	}
	if !view.ReplayGainTrackGain.HasRatio() {
		t.Fatal("expected ratio to be derived from dB")
	}
	got := view.ReplayGainTrackGain.Ratio
	want := dbToRatio(-6.0)
	if got != want {
		t.Errorf("Ratio = %v, want %v", got, want)
	}
}

func TestApplyGenreResolvesID3Reference(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.ID3v2_3, "TCON", nativetag.String("(17)"))

	view, _ := Apply(set)
	if len(view.Genre) != 1 || view.Genre[0] != "Rock" {
		t.Errorf("Genre = %v, want [Rock]", view.Genre)
	}
}

func TestApplyTrackOfTotalFromSplitValue(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.ITunes, "trkn", nativetag.TrackDiscValue(3, 12))

	view, _ := Apply(set)
	if view.Track.No != 3 || view.Track.Of != 12 {
		t.Errorf("Track = %+v, want {3 12}", view.Track)
	}
}

func TestApplyVorbisTrackTotalMergesIntoExistingTrack(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.Vorbis, "TRACKNUMBER", nativetag.String("3"))
	set.Append(format.Vorbis, "TRACKTOTAL", nativetag.String("12"))

	view, _ := Apply(set)
	if view.Track.No != 3 || view.Track.Of != 12 {
		t.Errorf("Track = %+v, want {3 12}", view.Track)
	}
}

func TestApplyUnmappedTagIsIgnored(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.Vorbis, "X-NONSTANDARD-FIELD", nativetag.String("whatever"))

	view, warnings := Apply(set)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if view.Title != "" {
		t.Errorf("Title should remain empty, got %q", view.Title)
	}
}

func TestApplyUFIDTrackIDFromBytes(t *testing.T) {
	set := nativetag.NewSet()
	set.Append(format.ID3v2_3, "UFID:http://musicbrainz.org", nativetag.Bytes([]byte("abc-123")))

	view, _ := Apply(set)
	if view.MusicBrainzTrackID != "abc-123" {
		t.Errorf("MusicBrainzTrackID = %q, want %q", view.MusicBrainzTrackID, "abc-123")
	}
}
