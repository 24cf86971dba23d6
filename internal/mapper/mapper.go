package mapper

import (
	"strings"

	"github.com/hvianna/music-metadata/common"
	"github.com/hvianna/music-metadata/format"
	"github.com/hvianna/music-metadata/nativetag"
)

// byLookupKey indexes table by (system, lookup key), where the lookup key
// is upper-cased for APEv2 only: vorbiscomment.Decode already upper-cases
// Vorbis/FLAC/Ogg keys at the source, but apeitem.DecodeItems preserves an
// APEv2 item's key exactly as written, and real-world APEv2 writers are
// inconsistent about case.
var byLookupKey = buildIndex()

func buildIndex() map[format.TagSystem]map[string]applier {
	idx := make(map[format.TagSystem]map[string]applier, len(table))
	for _, r := range table {
		m, ok := idx[r.system]
		if !ok {
			m = make(map[string]applier)
			idx[r.system] = m
		}
		m[lookupKey(r.system, r.id)] = r.apply
	}
	return idx
}

func lookupKey(system format.TagSystem, id string) string {
	if system == format.TagAPEv2 {
		return strings.ToUpper(id)
	}
	return id
}

// Apply implements spec.md §4.5: it walks set in arrival order and, for
// every (tag-system, id) pair with a table row, applies that row's
// coercion to populate the common view. Tags with no matching row are
// silently ignored; they remain available, unnormalized, via
// nativetag.OrderTags.
func Apply(set *nativetag.Set) (*common.View, []format.Warning) {
	view := &common.View{}
	st := newState()
	var warnings []format.Warning
	warn := func(w format.Warning) { warnings = append(warnings, w) }

	for _, system := range set.Systems() {
		rows, ok := byLookupKey[system]
		if !ok {
			continue
		}
		for _, tag := range set.Tags(system) {
			a, ok := rows[lookupKey(system, tag.ID)]
			if !ok {
				continue
			}
			a(tag.Value, view, st, warn)
		}
	}

	return view, warnings
}
