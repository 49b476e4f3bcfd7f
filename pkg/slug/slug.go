// Package slug implements the canonical URL-safe identifiers used
// throughout the metadata-plane core: a strict slug (`[a-z0-9-]`, no
// leading/trailing/consecutive hyphens) and a lax slug (`[A-Za-z0-9+._-]`,
// no run collapsing), unified behind EitherSlug wherever an index value
// may accept either flavor.
package slug

import (
	"strings"
	"unicode"
)

// StrictSlug is a normalized ASCII identifier drawn from [a-z0-9-], with
// no leading, trailing, or doubled hyphen.
//
// Val is exported (with a codec tag) because StrictSlug-typed fields
// (Org/Store/Cache Name, Token Nickname/Secret, etc.) travel through
// pkg/kv's reflection-based msgpack codec as part of a model record;
// an unexported field is invisible to it and would round-trip as an
// empty slug.
type StrictSlug struct {
	Val string `codec:"s"`
}

// NewStrictSlug normalizes an arbitrary string into a StrictSlug:
// transliterating non-ASCII letters where possible (see deasciify),
// lowercasing, mapping whatever's left outside [a-z0-9] to '-', and
// collapsing runs of separators. Construction is total and idempotent:
// NewStrictSlug(NewStrictSlug(s).String()) == NewStrictSlug(s).
func NewStrictSlug(s string) StrictSlug {
	return StrictSlug{Val: normalizeStrict(s)}
}

// String returns the underlying normalized string.
func (s StrictSlug) String() string { return s.Val }

// IsStrictSlug reports whether s is already in strict-slug form.
func IsStrictSlug(s string) bool {
	bytes := []byte(s)
	n := len(bytes)
	if n == 0 || bytes[0] == '-' || bytes[n-1] == '-' {
		return false
	}
	for i, b := range bytes {
		switch {
		case b >= 'a' && b <= 'z', b >= '0' && b <= '9':
			continue
		case b == '-' && i > 0 && bytes[i-1] != '-':
			continue
		default:
			return false
		}
	}
	return true
}

func normalizeStrict(s string) string {
	s = deasciify(s)
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	lastWasSep := true // suppress a leading hyphen
	for _, r := range s {
		var c byte
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			c = byte(r)
		default:
			c = '-'
		}
		if c == '-' {
			if lastWasSep {
				continue
			}
			lastWasSep = true
		} else {
			lastWasSep = false
		}
		b.WriteByte(c)
	}
	out := strings.TrimRight(b.String(), "-")
	return out
}

// LaxSlug is a normalized ASCII identifier drawn from [A-Za-z0-9+._-];
// unlike StrictSlug it preserves case and does not collapse runs of
// replacement characters.
//
// Val is exported (with a codec tag) for the same reason as
// StrictSlug.Val: LaxSlug is Entry.Path's type, and that field travels
// through the reflection-based msgpack codec.
type LaxSlug struct {
	Val string `codec:"s"`
}

// NewLaxSlug normalizes an arbitrary string into a LaxSlug: non-ASCII
// letters are transliterated where possible (see deasciify), and
// whatever isn't in [A-Za-z0-9+._-] afterward maps to a single '-' per
// rune, with case preserved and no run collapsing. Transliteration can
// change the rune count (ß becomes "ss"). Construction is total and
// idempotent.
func NewLaxSlug(s string) LaxSlug {
	s = deasciify(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII && isLaxByte(byte(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return LaxSlug{Val: b.String()}
}

// String returns the underlying normalized string.
func (s LaxSlug) String() string { return s.Val }

// IsLaxSlug reports whether s is already in lax-slug form.
func IsLaxSlug(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLaxByte(s[i]) {
			return false
		}
	}
	return true
}

func isLaxByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '+', b == '.', b == '_', b == '-':
		return true
	default:
		return false
	}
}

// Flavor tags which slug kind an EitherSlug holds.
type Flavor int

const (
	FlavorStrict Flavor = iota
	FlavorLax
)

// EitherSlug is a tagged union of StrictSlug and LaxSlug, used anywhere a
// Key segment or index value may accept either flavor. Equal compares
// two EitherSlugs purely on their string content, independent of
// flavor: Strict(a).Equal(Lax(a)) holds when both render as "a". Go's
// == on the struct also compares the flavor tag.
//
// All three fields are exported (with codec tags): EitherSlug is the
// projection type for every UniqueIndices entry, whose index values
// round-trip through the same reflection-based msgpack codec as model
// records. Strict/Lax stay reserved as the package-level constructor
// names below, so the fields are named StrictVal/LaxVal to avoid
// shadowing them.
type EitherSlug struct {
	Flav      Flavor     `codec:"flavor"`
	StrictVal StrictSlug `codec:"strict"`
	LaxVal    LaxSlug    `codec:"lax"`
}

// Strict wraps a StrictSlug as an EitherSlug.
func Strict(s StrictSlug) EitherSlug { return EitherSlug{Flav: FlavorStrict, StrictVal: s} }

// Lax wraps a LaxSlug as an EitherSlug.
func Lax(s LaxSlug) EitherSlug { return EitherSlug{Flav: FlavorLax, LaxVal: s} }

// Flavor reports which slug kind this EitherSlug holds.
func (e EitherSlug) Flavor() Flavor { return e.Flav }

// String returns the underlying string, regardless of flavor.
func (e EitherSlug) String() string {
	if e.Flav == FlavorStrict {
		return e.StrictVal.String()
	}
	return e.LaxVal.String()
}

// Equal reports whether two EitherSlugs have the same string content,
// regardless of flavor tag.
func (e EitherSlug) Equal(other EitherSlug) bool { return e.String() == other.String() }
