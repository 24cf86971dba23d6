package assemble

import (
	"testing"

	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/nativetag"
	"github.com/hvianna/music-metadata/observer"
)

func TestAssembleNoContainerFails(t *testing.T) {
	_, err := Assemble(format.Facts{}, nativetag.NewSet(), nil, observer.NewPump(nil))
	if err == nil {
		t.Fatal("expected an UnsupportedContainer error, got nil")
	}
	fmtErr, ok := err.(*format.Error)
	if !ok {
		t.Fatalf("err = %T, want *format.Error", err)
	}
	if fmtErr.Kind != format.UnsupportedContainer {
		t.Errorf("Kind = %v, want %v", fmtErr.Kind, format.UnsupportedContainer)
	}
}

func TestAssembleJoinsFactsTagsAndView(t *testing.T) {
	facts := format.Facts{Container: format.FLAC}
	facts.AddTagSystem(format.Vorbis)
	facts.SetSampleRate(44100)

	set := nativetag.NewSet()
	set.Append(format.Vorbis, "TITLE", nativetag.String("Test Song"))

	res, err := Assemble(facts, set, nil, observer.NewPump(nil))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Format.Container != format.FLAC {
		t.Errorf("Container = %v, want %v", res.Format.Container, format.FLAC)
	}
	if res.Format.SampleRate != 44100 {
		t.Errorf("SampleRate = %v, want 44100", res.Format.SampleRate)
	}
	if res.Common.Title != "Test Song" {
		t.Errorf("Title = %q, want %q", res.Common.Title, "Test Song")
	}
	if res.Native.Tags(format.Vorbis)[0].ID != "TITLE" {
		t.Errorf("native tag set not preserved on Result")
	}
}

func TestAssembleCarriesParseWarnings(t *testing.T) {
	facts := format.Facts{Container: format.MPEG}
	parseWarnings := []format.Warning{format.Warnf(format.DecodeError, "mpeg.Parse", "truncated frame")}

	res, err := Assemble(facts, nativetag.NewSet(), parseWarnings, observer.NewPump(nil))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Message != "truncated frame" {
		t.Errorf("Warnings = %v, want the single parse warning carried through", res.Warnings)
	}
}

func TestAssembleEmitsObserverEvents(t *testing.T) {
	facts := format.Facts{Container: format.FLAC}
	set := nativetag.NewSet()
	set.Append(format.Vorbis, "ARTIST", nativetag.String("Observed Artist"))

	var events []observer.Event
	pump := observer.NewPump(observer.Func(func(e observer.Event) {
		events = append(events, e)
	}))

	if _, err := Assemble(facts, set, nil, pump); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var sawArtist bool
	for _, e := range events {
		if e.Kind == observer.Common && e.FieldID == "artist" && e.NewValue == "Observed Artist" {
			sawArtist = true
		}
	}
	if !sawArtist {
		t.Errorf("expected an artist common-field event, got %+v", events)
	}
}

func TestAssembleRecoversObserverPanic(t *testing.T) {
	facts := format.Facts{Container: format.FLAC}
	pump := observer.NewPump(observer.Func(func(observer.Event) {
		panic("observer exploded")
	}))

	res, err := Assemble(facts, nativetag.NewSet(), nil, pump)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Kind == format.DecodeError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning recording the observer panic, got %v", res.Warnings)
	}
}
