package mapper

import (
	"github.com/hvianna/music-metadata/common"
	"github.com/hvianna/music-metadata/format"
)

type row struct {
	system format.TagSystem
	id     string
	apply  applier
}

func titleF(v *common.View) *string        { return &v.Title }
func albumF(v *common.View) *string        { return &v.Album }
func albumArtistF(v *common.View) *string  { return &v.AlbumArtist }
func composerF(v *common.View) *string     { return &v.Composer }
func commentF(v *common.View) *string      { return &v.Comment }
func lyricsF(v *common.View) *string       { return &v.Lyrics }
func copyrightF(v *common.View) *string    { return &v.Copyright }
func encodedByF(v *common.View) *string    { return &v.EncodedBy }
func sortTitleF(v *common.View) *string    { return &v.SortTitle }
func sortArtistF(v *common.View) *string   { return &v.SortArtist }
func sortAlbumF(v *common.View) *string    { return &v.SortAlbum }
func keyF(v *common.View) *string          { return &v.Key }
func languageF(v *common.View) *string     { return &v.Language }
func mbArtistF(v *common.View) *string     { return &v.MusicBrainzArtistID }
func mbAlbumF(v *common.View) *string      { return &v.MusicBrainzAlbumID }
func mbAlbumArtistF(v *common.View) *string { return &v.MusicBrainzAlbumArtistID }
func mbTrackF(v *common.View) *string      { return &v.MusicBrainzTrackID }
func mbReleaseGroupF(v *common.View) *string { return &v.MusicBrainzReleaseGroupID }
func acoustIDF(v *common.View) *string     { return &v.AcoustID }

func bpmF(v *common.View) *int { return &v.BPM }

func isrcSliceF(v *common.View) *[]string { return &v.ISRC }

func trackF(v *common.View) *common.TrackDisc { return &v.Track }
func diskF(v *common.View) *common.TrackDisc  { return &v.Disk }

func trackGainF(v *common.View) *common.Gain { return &v.ReplayGainTrackGain }
func trackPeakF(v *common.View) *common.Gain { return &v.ReplayGainTrackPeak }
func albumGainF(v *common.View) *common.Gain { return &v.ReplayGainAlbumGain }
func albumPeakF(v *common.View) *common.Gain { return &v.ReplayGainAlbumPeak }

func gaplessF(v *common.View) *bool { return &v.Gapless }

// table is the full (tag-system, tag-id) -> (common field, coercion)
// lookup, the data half of the mapper spec.md §4.5 calls for. It is
// intentionally incomplete for the long tail of rarely-used frames (e.g.
// TIPL/TMCL role-credit lists): extending coverage is a matter of adding
// rows, never new per-format code, which is the property the spec asks
// this design to have.
var table = buildTable()

func buildTable() []row {
	var t []row

	add := func(system format.TagSystem, id string, a applier) {
		t = append(t, row{system: system, id: id, apply: a})
	}

	add(format.ID3v1, "TITLE", stringField("title", titleF, coerceTrim))
	add(format.ID3v1, "ARTIST", artistField())
	add(format.ID3v1, "ALBUM", stringField("album", albumF, coerceTrim))
	add(format.ID3v1, "YEAR", dateField())
	add(format.ID3v1, "COMMENT", stringField("comment", commentF, coerceTrim))
	add(format.ID3v1, "TRACKNUMBER", trackDiscField("track", trackF))
	add(format.ID3v1, "GENRE", genreField())

	for _, sys := range []format.TagSystem{format.ID3v2_2, format.ID3v2_3, format.ID3v2_4} {
		short := sys == format.ID3v2_2
		id := func(v2, v34 string) string {
			if short {
				return v2
			}
			return v34
		}
		add(sys, id("TT2", "TIT2"), stringField("title", titleF, coerceTrim))
		add(sys, id("TP1", "TPE1"), artistField())
		add(sys, id("TP2", "TPE2"), stringField("albumartist", albumArtistF, coerceTrim))
		add(sys, id("TAL", "TALB"), stringField("album", albumF, coerceTrim))
		add(sys, id("TCM", "TCOM"), stringField("composer", composerF, coerceTrim))
		add(sys, id("TCO", "TCON"), genreField())
		add(sys, id("TRK", "TRCK"), trackDiscField("track", trackF))
		add(sys, id("TPA", "TPOS"), trackDiscField("disk", diskF))
		add(sys, id("TYE", "TYER"), dateField())
		add(sys, "TDRC", dateField()) // ID3v2.4 single timestamp frame
		add(sys, id("TBP", "TBPM"), intField("bpm", bpmF, coerceToInt))
		add(sys, id("TCR", "TCOP"), stringField("copyright", copyrightF, coerceTrim))
		add(sys, id("TEN", "TENC"), stringField("encodedby", encodedByF, coerceTrim))
		add(sys, id("TOT", "TSOT"), stringField("sorttitle", sortTitleF, coerceTrim))
		add(sys, "TSOP", stringField("sortartist", sortArtistF, coerceTrim))
		add(sys, "TSOA", stringField("sortalbum", sortAlbumF, coerceTrim))
		add(sys, id("TRC", "TSRC"), sliceField(isrcSliceF, coerceTrim))
		add(sys, "TKEY", stringField("key", keyF, coerceTrim))
		add(sys, id("TLA", "TLAN"), stringField("language", languageF, coerceTrim))
		add(sys, id("COM", "COMM"), stringField("comment", commentF, coerceTrim))
		add(sys, id("ULT", "USLT"), stringField("lyrics", lyricsF, coerceTrim))
		add(sys, id("PIC", "APIC"), pictureField())
		add(sys, "POPM", ratingField())

		txxx := "TXX"
		ufid := "UFI"
		if !short {
			txxx, ufid = "TXXX", "UFID"
		}
		add(sys, txxx+":MusicBrainz Artist Id", stringField("mb_artist", mbArtistF, coerceTrim))
		add(sys, txxx+":musicbrainz_artistid", stringField("mb_artist", mbArtistF, coerceTrim))
		add(sys, txxx+":MusicBrainz Album Id", stringField("mb_album", mbAlbumF, coerceTrim))
		add(sys, txxx+":musicbrainz_albumid", stringField("mb_album", mbAlbumF, coerceTrim))
		add(sys, txxx+":MusicBrainz Album Artist Id", stringField("mb_albumartist", mbAlbumArtistF, coerceTrim))
		add(sys, txxx+":musicbrainz_albumartistid", stringField("mb_albumartist", mbAlbumArtistF, coerceTrim))
		add(sys, txxx+":MusicBrainz Release Group Id", stringField("mb_releasegroup", mbReleaseGroupF, coerceTrim))
		add(sys, txxx+":musicbrainz_releasegroupid", stringField("mb_releasegroup", mbReleaseGroupF, coerceTrim))
		add(sys, txxx+":Acoustid Id", stringField("acoustid", acoustIDF, coerceTrim))
		add(sys, txxx+":acoustid_id", stringField("acoustid", acoustIDF, coerceTrim))
		add(sys, txxx+":REPLAYGAIN_TRACK_GAIN", gainFromDBField("rg_track_gain", trackGainF))
		add(sys, txxx+":REPLAYGAIN_TRACK_PEAK", gainRatioOnlyField("rg_track_peak", trackPeakF))
		add(sys, txxx+":REPLAYGAIN_ALBUM_GAIN", gainFromDBField("rg_album_gain", albumGainF))
		add(sys, txxx+":REPLAYGAIN_ALBUM_PEAK", gainRatioOnlyField("rg_album_peak", albumPeakF))
		add(sys, ufid+":http://musicbrainz.org", stringField("mb_track", mbTrackF, coerceTrim))
	}

	for _, id := range []string{"TITLE"} {
		add(format.TagAPEv2, id, stringField("title", titleF, coerceTrim))
	}
	add(format.TagAPEv2, "ARTIST", artistField())
	add(format.TagAPEv2, "ALBUM", stringField("album", albumF, coerceTrim))
	add(format.TagAPEv2, "ALBUMARTIST", stringField("albumartist", albumArtistF, coerceTrim))
	add(format.TagAPEv2, "COMPOSER", stringField("composer", composerF, coerceTrim))
	add(format.TagAPEv2, "YEAR", dateField())
	add(format.TagAPEv2, "GENRE", genreField())
	add(format.TagAPEv2, "TRACK", trackDiscField("track", trackF))
	add(format.TagAPEv2, "DISC", trackDiscField("disk", diskF))
	add(format.TagAPEv2, "COMMENT", stringField("comment", commentF, coerceTrim))
	add(format.TagAPEv2, "ISRC", sliceField(isrcSliceF, coerceTrim))
	add(format.TagAPEv2, "REPLAYGAIN_TRACK_GAIN", gainFromDBField("rg_track_gain", trackGainF))
	add(format.TagAPEv2, "REPLAYGAIN_TRACK_PEAK", gainRatioOnlyField("rg_track_peak", trackPeakF))
	add(format.TagAPEv2, "REPLAYGAIN_ALBUM_GAIN", gainFromDBField("rg_album_gain", albumGainF))
	add(format.TagAPEv2, "REPLAYGAIN_ALBUM_PEAK", gainRatioOnlyField("rg_album_peak", albumPeakF))
	add(format.TagAPEv2, "MUSICBRAINZ_ARTISTID", stringField("mb_artist", mbArtistF, coerceTrim))
	add(format.TagAPEv2, "MUSICBRAINZ_ALBUMID", stringField("mb_album", mbAlbumF, coerceTrim))
	add(format.TagAPEv2, "MUSICBRAINZ_ALBUMARTISTID", stringField("mb_albumartist", mbAlbumArtistF, coerceTrim))
	add(format.TagAPEv2, "MUSICBRAINZ_TRACKID", stringField("mb_track", mbTrackF, coerceTrim))

	add(format.Vorbis, "TITLE", stringField("title", titleF, coerceTrim))
	add(format.Vorbis, "ARTIST", artistField())
	add(format.Vorbis, "ALBUM", stringField("album", albumF, coerceTrim))
	add(format.Vorbis, "ALBUMARTIST", stringField("albumartist", albumArtistF, coerceTrim))
	add(format.Vorbis, "COMPOSER", stringField("composer", composerF, coerceTrim))
	add(format.Vorbis, "GENRE", genreField())
	add(format.Vorbis, "DATE", dateField())
	add(format.Vorbis, "TRACKNUMBER", trackDiscField("track", trackF))
	add(format.Vorbis, "TRACKTOTAL", totalField("track", trackF))
	add(format.Vorbis, "DISCNUMBER", trackDiscField("disk", diskF))
	add(format.Vorbis, "DISCTOTAL", totalField("disk", diskF))
	add(format.Vorbis, "COMMENT", stringField("comment", commentF, coerceTrim))
	add(format.Vorbis, "DESCRIPTION", stringField("comment", commentF, coerceTrim))
	add(format.Vorbis, "ISRC", sliceField(isrcSliceF, coerceTrim))
	add(format.Vorbis, "REPLAYGAIN_TRACK_GAIN", gainFromDBField("rg_track_gain", trackGainF))
	add(format.Vorbis, "REPLAYGAIN_TRACK_PEAK", gainRatioOnlyField("rg_track_peak", trackPeakF))
	add(format.Vorbis, "REPLAYGAIN_ALBUM_GAIN", gainFromDBField("rg_album_gain", albumGainF))
	add(format.Vorbis, "REPLAYGAIN_ALBUM_PEAK", gainRatioOnlyField("rg_album_peak", albumPeakF))
	add(format.Vorbis, "MUSICBRAINZ_ARTISTID", stringField("mb_artist", mbArtistF, coerceTrim))
	add(format.Vorbis, "MUSICBRAINZ_ALBUMID", stringField("mb_album", mbAlbumF, coerceTrim))
	add(format.Vorbis, "MUSICBRAINZ_ALBUMARTISTID", stringField("mb_albumartist", mbAlbumArtistF, coerceTrim))
	add(format.Vorbis, "MUSICBRAINZ_TRACKID", stringField("mb_track", mbTrackF, coerceTrim))
	add(format.Vorbis, "METADATA_BLOCK_PICTURE", pictureField())
	add(format.Vorbis, "RATING", ratingField())

	add(format.ITunes, "\xa9nam", stringField("title", titleF, coerceTrim))
	add(format.ITunes, "\xa9ART", artistField())
	add(format.ITunes, "aART", stringField("albumartist", albumArtistF, coerceTrim))
	add(format.ITunes, "\xa9alb", stringField("album", albumF, coerceTrim))
	add(format.ITunes, "\xa9wrt", stringField("composer", composerF, coerceTrim))
	add(format.ITunes, "\xa9gen", genreField())
	add(format.ITunes, "\xa9day", dateField())
	add(format.ITunes, "\xa9cmt", stringField("comment", commentF, coerceTrim))
	add(format.ITunes, "\xa9lyr", stringField("lyrics", lyricsF, coerceTrim))
	add(format.ITunes, "trkn", trackDiscField("track", trackF))
	add(format.ITunes, "disk", trackDiscField("disk", diskF))
	add(format.ITunes, "tmpo", intField("bpm", bpmF, coerceToInt))
	add(format.ITunes, "cprt", stringField("copyright", copyrightF, coerceTrim))
	add(format.ITunes, "covr", pictureField())
	add(format.ITunes, "pgap", boolField(gaplessF))
	add(format.ITunes, "----:MusicBrainz Artist Id", stringField("mb_artist", mbArtistF, coerceTrim))
	add(format.ITunes, "----:MusicBrainz Album Id", stringField("mb_album", mbAlbumF, coerceTrim))
	add(format.ITunes, "----:MusicBrainz Album Artist Id", stringField("mb_albumartist", mbAlbumArtistF, coerceTrim))
	add(format.ITunes, "----:MusicBrainz Release Track Id", stringField("mb_track", mbTrackF, coerceTrim))

	add(format.TagASF, "Title", stringField("title", titleF, coerceTrim))
	add(format.TagASF, "Author", artistField())
	add(format.TagASF, "WM/AlbumArtist", stringField("albumartist", albumArtistF, coerceTrim))
	add(format.TagASF, "WM/AlbumTitle", stringField("album", albumF, coerceTrim))
	add(format.TagASF, "WM/Genre", genreField())
	add(format.TagASF, "WM/TrackNumber", trackDiscField("track", trackF))
	add(format.TagASF, "WM/Year", dateField())
	add(format.TagASF, "Description", stringField("comment", commentF, coerceTrim))
	add(format.TagASF, "Copyright", stringField("copyright", copyrightF, coerceTrim))

	add(format.TagRIFF, "INAM", stringField("title", titleF, coerceTrim))
	add(format.TagRIFF, "IART", artistField())
	add(format.TagRIFF, "IPRD", stringField("album", albumF, coerceTrim))
	add(format.TagRIFF, "IGNR", genreField())
	add(format.TagRIFF, "ICRD", dateField())
	add(format.TagRIFF, "ICMT", stringField("comment", commentF, coerceTrim))
	add(format.TagRIFF, "ICOP", stringField("copyright", copyrightF, coerceTrim))

	add(format.TagAIFF, "NAME", stringField("title", titleF, coerceTrim))
	add(format.TagAIFF, "AUTH", artistField())
	add(format.TagAIFF, "ANNO", stringField("comment", commentF, coerceTrim))
	add(format.TagAIFF, "(c) ", stringField("copyright", copyrightF, coerceTrim))

	return t
}
