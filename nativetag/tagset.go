package nativetag

import "github.com/hvianna/music-metadata/format"

// Tag is a single (id, value) pair as emitted by its source tag system,
// preserving the system's own identifier and raw value.
type Tag struct {
	ID    string
	Value Value
}

// Set is the native-tag-set data model: a mapping from tag-system name to
// an ordered sequence of tags, preserving arrival (byte) order and
// duplicate identifiers, per the spec's data model.
type Set struct {
	order   []format.TagSystem
	systems map[format.TagSystem][]Tag
}

// NewSet returns an empty native tag set.
func NewSet() *Set {
	return &Set{systems: make(map[format.TagSystem][]Tag)}
}

// Append records a tag for the given system, preserving arrival order and
// keeping duplicate identifiers (rather than overwriting them) per the
// spec's "duplicate identifiers are preserved in arrival order" rule.
func (s *Set) Append(system format.TagSystem, id string, v Value) {
	if _, ok := s.systems[system]; !ok {
		s.order = append(s.order, system)
	}
	s.systems[system] = append(s.systems[system], Tag{ID: id, Value: v})
}

// Systems returns the tag systems present, in first-seen order.
func (s *Set) Systems() []format.TagSystem {
	return s.order
}

// Tags returns the ordered tag sequence for a system (nil if absent).
func (s *Set) Tags(system format.TagSystem) []Tag {
	return s.systems[system]
}

// OrderTags flattens every native tag into a single id -> ordered values
// mapping, independent of which tag system produced it. This is the
// "order_tags" utility from the spec's external-interfaces table.
func OrderTags(s *Set) map[string][]Value {
	out := make(map[string][]Value)
	for _, sys := range s.order {
		for _, t := range s.systems[sys] {
			out[t.ID] = append(out[t.ID], t.Value)
		}
	}
	return out
}
