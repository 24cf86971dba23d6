package mapper

import (
	"github.com/hvianna/music-metadata/common"
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/nativetag"
)

// State tracks, per mapping run, which scalar fields have already
// received a value, implementing the arity rule from spec.md §4.5:
// "when the target field is a sequence, mapping appends; when scalar,
// the first non-empty value wins and subsequent differing values raise a
// warning."
type State struct {
	set map[string]bool
}

func newState() *State { return &State{set: make(map[string]bool)} }

type applier func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning))

func setScalarString(st *State, warn func(format.Warning), field string, dst *string, val string) {
	if val == "" {
		return
	}
	if !st.set[field] {
		*dst = val
		st.set[field] = true
		return
	}
	if *dst != val {
		warn(format.Warnf(format.DecodeError, "mapper.Apply",
			"conflicting value for %s: keeping %q, ignoring %q", field, *dst, val))
	}
}

func setScalarInt(st *State, warn func(format.Warning), field string, dst *int, val int) {
	if val == 0 {
		return
	}
	if !st.set[field] {
		*dst = val
		st.set[field] = true
		return
	}
	if *dst != val {
		warn(format.Warnf(format.DecodeError, "mapper.Apply",
			"conflicting value for %s: keeping %d, ignoring %d", field, *dst, val))
	}
}

func appendUnique(dst *[]string, val string) {
	if val == "" {
		return
	}
	for _, existing := range *dst {
		if existing == val {
			return
		}
	}
	*dst = append(*dst, val)
}

func stringField(field string, dst func(*common.View) *string, coerce func(nativetag.Value) (string, bool)) applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		s, ok := coerce(v)
		if !ok {
			return
		}
		setScalarString(st, warn, field, dst(view), s)
	}
}

func intField(field string, dst func(*common.View) *int, coerce func(nativetag.Value) (int, bool)) applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		n, ok := coerce(v)
		if !ok {
			return
		}
		setScalarInt(st, warn, field, dst(view), n)
	}
}

func sliceField(dst func(*common.View) *[]string, coerce func(nativetag.Value) (string, bool)) applier {
	return func(v nativetag.Value, view *common.View, _ *State, _ func(format.Warning)) {
		s, ok := coerce(v)
		if !ok {
			return
		}
		appendUnique(dst(view), s)
	}
}

func splitSliceField(dst func(*common.View) *[]string, sep string) applier {
	return func(v nativetag.Value, view *common.View, _ *State, _ func(format.Warning)) {
		parts, ok := coerceSplitOnChar(v, sep)
		if !ok {
			return
		}
		for _, p := range parts {
			appendUnique(dst(view), p)
		}
	}
}

// artistField both sets the scalar Artist (first value wins) and appends
// to the repeatable Artists list, so a single-valued tag system (ID3v2's
// TPE1) and a repeatable one (Vorbis's ARTIST) produce a consistent view.
// Later differing values are kept in Artists, so they raise no conflict
// warning.
func artistField() applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		s, ok := coerceTrim(v)
		if !ok || s == "" {
			return
		}
		if !st.set["artist"] {
			view.Artist = s
			st.set["artist"] = true
		}
		appendUnique(&view.Artists, s)
	}
}

func genreField() applier {
	return func(v nativetag.Value, view *common.View, _ *State, _ func(format.Warning)) {
		names, ok := coerceGenreWithID3Refs(v)
		if !ok {
			return
		}
		for _, n := range names {
			appendUnique(&view.Genre, n)
		}
	}
}

func trackDiscField(field string, dst func(*common.View) *common.TrackDisc) applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		td, ok := coerceSplitTrackOfTotal(v)
		if !ok {
			return
		}
		target := dst(view)
		if !st.set[field] {
			target.No = td.No
			target.Of = td.Of
			st.set[field] = true
			return
		}
		if td.No != 0 && target.No != td.No {
			warn(format.Warnf(format.DecodeError, "mapper.Apply",
				"conflicting value for %s: keeping %d, ignoring %d", field, target.No, td.No))
			return
		}
		if target.Of == 0 && td.Of != 0 {
			target.Of = td.Of
		}
	}
}

// totalField merges a separately-tagged "total" value (Vorbis
// TRACKTOTAL/DISCTOTAL) into an existing TrackDisc's Of field without
// disturbing No.
func totalField(field string, dst func(*common.View) *common.TrackDisc) applier {
	return func(v nativetag.Value, view *common.View, st *State, _ func(format.Warning)) {
		n, ok := coerceToInt(v)
		if !ok {
			return
		}
		target := dst(view)
		if target.Of == 0 {
			target.Of = n
		}
		st.set[field] = true
	}
}

func dateField() applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		date, year, ok := coerceParseDate(v)
		if !ok {
			return
		}
		setScalarString(st, warn, "date", &view.Date, date)
		setScalarInt(st, warn, "year", &view.Year, year)
	}
}

func gainFromDBField(field string, dst func(*common.View) *common.Gain) applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		db, ratio, ok := coerceRatioFromDB(v)
		if !ok {
			return
		}
		g := dst(view)
		if g.HasDB() {
			if g.DB != db {
				warn(format.Warnf(format.DecodeError, "mapper.Apply",
					"conflicting value for %s: keeping %v dB, ignoring %v dB", field, g.DB, db))
			}
			return
		}
		g.SetDB(db)
		if !g.HasRatio() {
			g.SetRatio(ratio)
		}
		st.set[field] = true
	}
}

func gainRatioOnlyField(field string, dst func(*common.View) *common.Gain) applier {
	return func(v nativetag.Value, view *common.View, st *State, warn func(format.Warning)) {
		f, ok := coerceToFloat(v)
		if !ok {
			return
		}
		g := dst(view)
		if g.HasRatio() {
			if g.Ratio != f {
				warn(format.Warnf(format.DecodeError, "mapper.Apply",
					"conflicting value for %s: keeping ratio %v, ignoring %v", field, g.Ratio, f))
			}
			return
		}
		g.SetRatio(f)
		st.set[field] = true
	}
}

func pictureField() applier {
	return func(v nativetag.Value, view *common.View, _ *State, _ func(format.Warning)) {
		if v.Kind != nativetag.KindPicture || v.Picture == nil {
			return
		}
		view.Picture = append(view.Picture, *v.Picture)
	}
}

func ratingField() applier {
	return func(v nativetag.Value, view *common.View, _ *State, _ func(format.Warning)) {
		r, ok := coerceRatingPOPM(v)
		if !ok {
			return
		}
		source := ""
		if v.Kind == nativetag.KindRating && v.Rating != nil {
			source = v.Rating.Source
		}
		view.Ratings = append(view.Ratings, common.Rating{Source: source, Rating: r})
	}
}

func boolField(dst func(*common.View) *bool) applier {
	return func(v nativetag.Value, view *common.View, _ *State, _ func(format.Warning)) {
		b := false
		switch v.Kind {
		case nativetag.KindBool:
			b = v.Bool
		case nativetag.KindInt:
			b = v.Int != 0
		default:
			return
		}
		*dst(view) = b
	}
}
