package kv

import (
	"strings"

	"github.com/nika-industries/nika-sub000/pkg/slug"
)

// Key is a non-empty ordered sequence of segments, each an
// slug.EitherSlug. Its Display joins segments with ':'; that joined
// string is also the ordering the backend sorts on, so two keys compare
// in the same order as their display strings.
type Key struct {
	segments []Segment
}

// Segment is one component of a Key; it carries an EitherSlug so that a
// segment may be either a strict or a lax slug, compared transparently
// on string content.
type Segment = slug.EitherSlug

// NewKey builds a Key from its first segment plus any additional ones.
func NewKey(first Segment, rest ...Segment) Key {
	segs := make([]Segment, 0, 1+len(rest))
	segs = append(segs, first)
	segs = append(segs, rest...)
	return Key{segments: segs}
}

// With returns a copy of k with an additional segment appended.
func (k Key) With(seg Segment) Key {
	segs := make([]Segment, len(k.segments), len(k.segments)+1)
	copy(segs, k.segments)
	return Key{segments: append(segs, seg)}
}

// Push appends a segment to k in place.
func (k *Key) Push(seg Segment) { k.segments = append(k.segments, seg) }

// PushNew appends seg to k in place; it is equivalent to Push.
func (k *Key) PushNew(seg Segment) { k.Push(seg) }

// Get returns the segment at index, and whether it exists.
func (k Key) Get(index int) (Segment, bool) {
	if index < 0 || index >= len(k.segments) {
		return Segment{}, false
	}
	return k.segments[index], true
}

// Segments returns the ordered segment slice. Callers must not mutate
// the returned slice.
func (k Key) Segments() []Segment { return k.segments }

// String joins the segments with ':', which is both the display form
// and the byte-wise sort order the backend uses.
func (k Key) String() string {
	parts := make([]string, len(k.segments))
	for i, s := range k.segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ":")
}

// Less reports whether k sorts before other, by lexicographic comparison
// of their display strings.
func (k Key) Less(other Key) bool { return k.String() < other.String() }
