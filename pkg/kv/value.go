package kv

import msgpack "github.com/hashicorp/go-msgpack/v2/codec"

// Value is an opaque byte vector. Records are serialized into Values via
// MessagePack with named fields, so schema additions are tolerated by
// older readers as long as required fields remain present.
type Value struct {
	bytes []byte
}

// NewValue wraps a raw byte slice as a Value.
func NewValue(b []byte) Value { return Value{bytes: b} }

// Bytes returns the underlying byte slice.
func (v Value) Bytes() []byte { return v.bytes }

var mh = func() *msgpack.MsgpackHandle {
	h := &msgpack.MsgpackHandle{}
	h.StructToArray = false // named-field encoding, not positional
	return h
}()

// Serialize encodes x into a Value using named-field MessagePack. The
// contract is deserialize(serialize(x)) == x for any x whose struct tags
// round-trip through msgpack.
func Serialize(x any) (Value, error) {
	var buf []byte
	enc := msgpack.NewEncoderBytes(&buf, mh)
	if err := enc.Encode(x); err != nil {
		return Value{}, err
	}
	return Value{bytes: buf}, nil
}

// Deserialize decodes a Value into the struct pointed to by out.
func Deserialize(v Value, out any) error {
	dec := msgpack.NewDecoderBytes(v.bytes, mh)
	return dec.Decode(out)
}
