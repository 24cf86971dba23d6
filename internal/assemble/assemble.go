// Package assemble implements the result assembler (spec.md §4.7): it
// joins format facts, the native tag set, accumulated warnings, and the
// mapped common view into one immutable Result, firing observer events for
// every field assignment along the way.
package assemble

import (
	"github.com/hvianna/music-metadata/common"
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/internal/mapper"
	"github.com/hvianna/music-metadata/nativetag"
	"github.com/hvianna/music-metadata/observer"
)

// Result is the single immutable value a completed parse produces.
// Callers must not mutate it; an Observer that retains a Snapshot is
// handed exactly this type (spec.md §9's "immutable result").
type Result struct {
	Format   format.Facts
	Native   *nativetag.Set
	Common   *common.View
	Warnings []format.Warning
}

// Assemble implements spec.md §4.7. facts must have its Container field
// already set by the caller (the dispatcher in the root tag package) from
// whichever container parser matched; native is the tag set every
// container/tag-decoder call appended to during the parse. If facts never
// recorded a container, the parse matched nothing and Assemble fails with
// UnsupportedContainer, per the spec.
//
// parseWarnings carries warnings accumulated before assembly (container
// and tag-decode warnings); Assemble appends to it, it never discards it.
func Assemble(facts format.Facts, native *nativetag.Set, parseWarnings []format.Warning, pump *observer.Pump) (*Result, error) {
	if facts.Container == format.Undefined {
		return nil, format.NewError(format.UnsupportedContainer, "assemble.Assemble", format.ErrNoContainer)
	}

	view, mapWarnings := mapper.Apply(native)

	warnings := make([]format.Warning, 0, len(parseWarnings)+len(mapWarnings))
	warnings = append(warnings, parseWarnings...)
	warnings = append(warnings, mapWarnings...)

	res := &Result{
		Format:   facts,
		Native:   native,
		Common:   view,
		Warnings: warnings,
	}

	emitFacts(pump, &facts, res)
	emitCommon(pump, view, res)

	if p := pump.LastPanic(); p != nil {
		res.Warnings = append(res.Warnings, format.Warnf(format.DecodeError, "observer.Pump",
			"observer panicked: %v", p))
	}

	return res, nil
}

// emitFacts replays every populated format.Facts field as an observer
// event. It runs after the parse completes rather than inline with each
// Facts.SetXxx call, since those live across a dozen container packages
// that don't carry a pump reference; this still satisfies spec.md §4.6's
// ordering guarantee ("ordered by assignment") because Facts.setOnce
// already enforces first-assignment-wins and Assemble only ever sees the
// final state once per field.
func emitFacts(pump *observer.Pump, f *format.Facts, snapshot *Result) {
	emit := func(field string, value interface{}) {
		pump.Emit(observer.Event{Kind: observer.Format, FieldID: field, NewValue: value, Snapshot: snapshot})
	}
	if f.Container != format.Undefined {
		emit("container", f.Container)
	}
	for _, ts := range f.TagSystems {
		emit("tagSystem", ts)
	}
	if f.Duration != 0 {
		emit("duration", f.Duration)
	}
	if f.Bitrate != 0 {
		emit("bitrate", f.Bitrate)
	}
	if f.SampleRate != 0 {
		emit("sampleRate", f.SampleRate)
	}
	if f.BitsPerSample != 0 {
		emit("bitsPerSample", f.BitsPerSample)
	}
	if f.NumChannels != 0 {
		emit("numChannels", f.NumChannels)
	}
	if f.NumSamples != 0 {
		emit("numSamples", f.NumSamples)
	}
	if f.Codec != "" {
		emit("codec", f.Codec)
	}
	if f.CodecProfile != "" {
		emit("codecProfile", f.CodecProfile)
	}
	if f.Tool != "" {
		emit("tool", f.Tool)
	}
	if f.Lossless {
		emit("lossless", f.Lossless)
	}
	if f.AudioMD5 != ([16]byte{}) {
		emit("audioMD5", f.AudioMD5)
	}
}

// emitCommon replays every populated common.View field, skipping the
// zero value of each type so an absent field never produces a spurious
// event, matching spec.md §4.6's "first populated or replaced" trigger.
func emitCommon(pump *observer.Pump, v *common.View, snapshot *Result) {
	emit := func(field string, value interface{}) {
		pump.Emit(observer.Event{Kind: observer.Common, FieldID: field, NewValue: value, Snapshot: snapshot})
	}
	if v.Title != "" {
		emit("title", v.Title)
	}
	if v.Artist != "" {
		emit("artist", v.Artist)
	}
	if len(v.Artists) > 0 {
		emit("artists", v.Artists)
	}
	if v.AlbumArtist != "" {
		emit("albumArtist", v.AlbumArtist)
	}
	if v.Album != "" {
		emit("album", v.Album)
	}
	if v.Year != 0 {
		emit("year", v.Year)
	}
	if v.Date != "" {
		emit("date", v.Date)
	}
	if v.Track.No != 0 || v.Track.Of != 0 {
		emit("track", v.Track)
	}
	if v.Disk.No != 0 || v.Disk.Of != 0 {
		emit("disk", v.Disk)
	}
	if len(v.Genre) > 0 {
		emit("genre", v.Genre)
	}
	if len(v.Picture) > 0 {
		emit("picture", v.Picture)
	}
	if v.Comment != "" {
		emit("comment", v.Comment)
	}
	if v.Composer != "" {
		emit("composer", v.Composer)
	}
	if v.Lyrics != "" {
		emit("lyrics", v.Lyrics)
	}
	if len(v.Ratings) > 0 {
		emit("ratings", v.Ratings)
	}
	if v.BPM != 0 {
		emit("bpm", v.BPM)
	}
	if v.Copyright != "" {
		emit("copyright", v.Copyright)
	}
	if v.EncodedBy != "" {
		emit("encodedBy", v.EncodedBy)
	}
	if v.Gapless {
		emit("gapless", v.Gapless)
	}
	if len(v.ISRC) > 0 {
		emit("isrc", v.ISRC)
	}
	if v.Key != "" {
		emit("key", v.Key)
	}
	if v.Language != "" {
		emit("language", v.Language)
	}
	if v.MusicBrainzArtistID != "" {
		emit("musicBrainzArtistId", v.MusicBrainzArtistID)
	}
	if v.MusicBrainzAlbumID != "" {
		emit("musicBrainzAlbumId", v.MusicBrainzAlbumID)
	}
	if v.MusicBrainzAlbumArtistID != "" {
		emit("musicBrainzAlbumArtistId", v.MusicBrainzAlbumArtistID)
	}
	if v.MusicBrainzTrackID != "" {
		emit("musicBrainzTrackId", v.MusicBrainzTrackID)
	}
	if v.MusicBrainzReleaseGroupID != "" {
		emit("musicBrainzReleaseGroupId", v.MusicBrainzReleaseGroupID)
	}
	if v.AcoustID != "" {
		emit("acoustId", v.AcoustID)
	}
	if v.ReplayGainTrackGain.HasDB() || v.ReplayGainTrackGain.HasRatio() {
		emit("replayGainTrackGain", v.ReplayGainTrackGain)
	}
	if v.ReplayGainTrackPeak.HasDB() || v.ReplayGainTrackPeak.HasRatio() {
		emit("replayGainTrackPeak", v.ReplayGainTrackPeak)
	}
	if v.ReplayGainAlbumGain.HasDB() || v.ReplayGainAlbumGain.HasRatio() {
		emit("replayGainAlbumGain", v.ReplayGainAlbumGain)
	}
	if v.ReplayGainAlbumPeak.HasDB() || v.ReplayGainAlbumPeak.HasRatio() {
		emit("replayGainAlbumPeak", v.ReplayGainAlbumPeak)
	}
}
