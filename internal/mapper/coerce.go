// Package mapper implements the common-view mapper: a static, data-driven
// lookup from (tag-system, tag-id) to a common field plus a coercion,
// per spec.md §4.5. Grounded on the teacher's per-format string-accessor
// methods (Title/Artist/Album/... in id3v2metadata.go, flac.go, mp4.go),
// generalized from "one method per field per format" into one table plus
// a closed coercion set, since the teacher's approach doesn't scale to
// eleven tag systems without the per-format code it explicitly avoids
// here.
package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/hvianna/music-metadata/internal/genre"
	"github.com/hvianna/music-metadata/nativetag"
)

// asString extracts a trimmed string from v, accepting string, int and
// float kinds by formatting them (several tag systems store numeric-ish
// fields, such as BPM, as text).
func asString(v nativetag.Value) (string, bool) {
	switch v.Kind {
	case nativetag.KindString:
		return v.Str, true
	case nativetag.KindInt:
		return strconv.FormatInt(v.Int, 10), true
	case nativetag.KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64), true
	case nativetag.KindBytes:
		return string(v.Bytes), true
	default:
		return "", false
	}
}

func coerceIdentity(v nativetag.Value) (string, bool) { return asString(v) }

func coerceTrim(v nativetag.Value) (string, bool) {
	s, ok := asString(v)
	return strings.TrimSpace(s), ok
}

func coerceToInt(v nativetag.Value) (int, bool) {
	if v.Kind == nativetag.KindInt {
		return int(v.Int), true
	}
	s, ok := asString(v)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	// Some fields (TRCK "3/12") carry extra text after the number; take
	// the leading run of digits.
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func coerceToFloat(v nativetag.Value) (float64, bool) {
	if v.Kind == nativetag.KindFloat {
		return v.Float, true
	}
	s, ok := asString(v)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.ToUpper(s), " DB")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerceSplitOnChar splits a string value on sep, trimming each part and
// dropping empty segments.
func coerceSplitOnChar(v nativetag.Value, sep string) ([]string, bool) {
	s, ok := asString(v)
	if !ok {
		return nil, false
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out, len(out) > 0
}

// trackOfTotal is the result of split-track-of-total, covering both a
// pre-split native TrackDisc value (MP4 trkn/disk) and a "N/M" string
// (ID3v2 TRCK/TPOS, Vorbis TRACKNUMBER/TRACKTOTAL).
type trackOfTotal struct {
	No int
	Of int
}

func coerceSplitTrackOfTotal(v nativetag.Value) (trackOfTotal, bool) {
	if v.Kind == nativetag.KindTrackDisc && v.TrackDisc != nil {
		return trackOfTotal{No: v.TrackDisc.No, Of: v.TrackDisc.Of}, true
	}
	s, ok := asString(v)
	if !ok {
		return trackOfTotal{}, false
	}
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	no, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return trackOfTotal{}, false
	}
	out := trackOfTotal{No: no}
	if len(parts) == 2 {
		if of, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			out.Of = of
		}
	}
	return out, true
}

// coerceParseDate accepts any value whose first four characters parse as a
// year (yyyy, yyyy-mm, yyyy-mm-dd, or a longer form such as a timestamp)
// and returns the trimmed value unchanged plus that year; it does not
// reformat the date.
func coerceParseDate(v nativetag.Value) (date string, year int, ok bool) {
	s, strOK := asString(v)
	if !strOK {
		return "", 0, false
	}
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return "", 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return "", 0, false
	}
	switch len(s) {
	case 4, 7, 10:
		return s, y, true
	default:
		return s, y, true
	}
}

// coerceRatioFromDB converts a "-6.00 dB"-style value into its linear
// ratio, per the spec's ratio = 10^(dB/20) requirement.
func coerceRatioFromDB(v nativetag.Value) (db, ratio float64, ok bool) {
	f, fok := coerceToFloat(v)
	if !fok {
		return 0, 0, false
	}
	return f, dbToRatio(f), true
}

func coerceDBFromRatio(v nativetag.Value) (ratio, db float64, ok bool) {
	f, fok := coerceToFloat(v)
	if !fok || f <= 0 {
		return 0, 0, false
	}
	return f, ratioToDB(f), true
}

// coerceGenreWithID3Refs resolves a single leading "(NN)" legacy ID3v2
// genre reference against the shared 148-entry table: a bare "(NN)" yields
// the table name, "(NN)Name" yields the text after the reference. Further
// references later in the value are not resolved. Anything else, including
// an index outside the table, is returned as literal text.
func coerceGenreWithID3Refs(v nativetag.Value) ([]string, bool) {
	s, ok := asString(v)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if s[0] == '(' {
		end := strings.IndexByte(s, ')')
		if end > 1 {
			if id, err := strconv.Atoi(s[1:end]); err == nil {
				if name, found := genre.Lookup(id); found {
					rest := strings.TrimSpace(s[end+1:])
					if rest == "" {
						return []string{name}, true
					}
					return []string{rest}, true
				}
			}
		}
	}
	return []string{s}, true
}

// coerceRatingPOPM is used when a tag system stores a rating as a raw
// byte (0-255) rather than nativetag's pre-built Rating payload.
func coerceRatingPOPM(v nativetag.Value) (float64, bool) {
	if v.Kind == nativetag.KindRating && v.Rating != nil {
		return v.Rating.Rating, true
	}
	n, ok := coerceToInt(v)
	if !ok {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return float64(n) / 255.0, true
}

func dbToRatio(db float64) float64 {
	return math.Pow(10, db/20)
}

func ratioToDB(ratio float64) float64 {
	return 20 * math.Log10(ratio)
}
