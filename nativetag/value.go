// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nativetag defines the tagged-union value type carried by every
// native (format-specific, un-normalized) tag, and the ordered, per-system
// collection that a container parser appends to as it decodes.
package nativetag

// Kind identifies which field of Value is meaningful.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindPicture
	KindRating
	KindTrackDisc
)

// Picture is an attached image: cover art, a label scan, etc.
type Picture struct {
	MIMEType    string
	Data        []byte
	Description string
	Type        string // free-form picture-type label, e.g. "Cover (front)"
}

// Rating is a normalized [0,1] opinion, optionally attributed to a source
// (an email address for ID3 POPM, a player name for Vorbis RATING, ...).
type Rating struct {
	Source string
	Rating float64 // in [0, 1]
}

// TrackDisc is a pre-split "track-of-total" or "disk-of-total" pair, used
// when the source format already separates the two numbers (MP4 trkn/disk)
// rather than encoding "3/12" as a single string (ID3v2 TRCK).
type TrackDisc struct {
	No int
	Of int
}

// Value is a closed tagged union over every native-tag payload type the
// spec enumerates. Exactly one of the typed accessors is meaningful,
// selected by Kind; this is deliberately a struct rather than
// interface{}, so a switch over Kind can be checked for exhaustiveness by
// a linter and a mapper coercion can never panic on an unexpected dynamic
// type.
type Value struct {
	Kind      Kind
	Str       string
	Int       int64
	Float     float64
	Bool      bool
	Bytes     []byte
	Picture   *Picture
	Rating    *Rating
	TrackDisc *TrackDisc
}

// String constructs a string-valued Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int constructs an int-valued Value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Float constructs a float-valued Value.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Bool constructs a bool-valued Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Bytes constructs a raw-byte-block Value.
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// PictureValue constructs a picture Value.
func PictureValue(p *Picture) Value { return Value{Kind: KindPicture, Picture: p} }

// RatingValue constructs a rating Value.
func RatingValue(r *Rating) Value { return Value{Kind: KindRating, Rating: r} }

// TrackDiscValue constructs a pre-split track/disk-of-total Value.
func TrackDiscValue(no, of int) Value {
	return Value{Kind: KindTrackDisc, TrackDisc: &TrackDisc{No: no, Of: of}}
}

// AsInterface returns the Value's payload as an interface{}, for callers
// (such as cmd/tag's native-tag dump) that want a dynamically-typed view
// instead of switching on Kind.
func (v Value) AsInterface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindBytes:
		return v.Bytes
	case KindPicture:
		return v.Picture
	case KindRating:
		return v.Rating
	case KindTrackDisc:
		return v.TrackDisc
	default:
		return nil
	}
}
