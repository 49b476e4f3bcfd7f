// Package model implements the indexed model store adapter: given a
// record type with a primary id and a declared set of unique secondary
// indices, it provides atomic create, fetch-by-id, fetch-by-index, and
// ordered enumeration over a kv.Store, with the consume-on-use
// transaction discipline from pkg/kv.
package model

import (
	"github.com/oklog/ulid/v2"

	"github.com/nika-industries/nika-sub000/pkg/slug"
)

// RecordID is a 128-bit lexicographically-ordered identifier tagged by
// model type M. Go generics give us the phantom-type tag without
// PhantomData: M never appears in a field, only in the type parameter.
//
// Val is exported (with an explicit codec tag) rather than a lowercase
// field, even though every accessor below already existed: the
// msgpack codec in pkg/kv is reflection-based and, like
// encoding/json or gob, silently skips unexported struct fields. An
// unexported field here would round-trip through kv.Serialize as a
// zero ULID on every RecordID[M]-typed column, including foreign keys
// (e.g. a model's Org/Store/Cache reference), not just a model's own
// primary id.
type RecordID[M any] struct {
	Val ulid.ULID `codec:"val"`
}

// NewRecordID generates a new RecordID: time-prefixed, monotonically
// increasing within this process for identical timestamps (ulid.ULID
// uses a monotonic random source seeded per process). Random 128-bit
// values would break the enumerate-order invariant, so ids MUST come
// from this constructor or FromULID with an already-monotonic source.
func NewRecordID[M any]() RecordID[M] {
	return RecordID[M]{Val: ulid.Make()}
}

// FromULID wraps an existing ULID as a RecordID[M].
func FromULID[M any](id ulid.ULID) RecordID[M] { return RecordID[M]{Val: id} }

// ParseRecordID decodes a RecordID from its canonical string form.
func ParseRecordID[M any](s string) (RecordID[M], error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return RecordID[M]{}, err
	}
	return RecordID[M]{Val: id}, nil
}

// ULID returns the underlying ulid.ULID.
func (r RecordID[M]) ULID() ulid.ULID { return r.Val }

// String returns the canonical 26-character Crockford base32 form.
func (r RecordID[M]) String() string { return r.Val.String() }

// Equal reports whether two RecordIDs hold the same 128-bit value.
func (r RecordID[M]) Equal(other RecordID[M]) bool { return r.Val == other.Val }

// Less reports whether r sorts before other; since a ULID's high bits
// encode a millisecond timestamp, this is also creation order.
func (r RecordID[M]) Less(other RecordID[M]) bool {
	return r.Val.Compare(other.Val) < 0
}

// Slug renders the RecordID as a strict slug for use as a Key segment
// (ULID's alphabet is already a subset of [a-z0-9-] once lowercased).
func (r RecordID[M]) Slug() slug.StrictSlug {
	return slug.NewStrictSlug(r.Val.String())
}

// MinRecordID and MaxRecordID bound the primary-key scan range used by
// Enumerate: the all-zero and all-0xFF ULIDs respectively.
func MinRecordID[M any]() RecordID[M] { return RecordID[M]{Val: ulid.ULID{}} }

func MaxRecordID[M any]() RecordID[M] {
	var max ulid.ULID
	for i := range max {
		max[i] = 0xFF
	}
	return RecordID[M]{Val: max}
}
