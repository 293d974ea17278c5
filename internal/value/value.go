// Package value defines the tagged value tree persisted by the protocol store
// and its canonical text encoding.
//
// Callers build values explicitly (String, Number, Bool, Bytes, List, Map,
// Null). Before encoding, Canonicalize rewrites every Bytes node into a string
// whose code points equal the input bytes. Decoding never reverses that
// step: stored key material comes back as a string and DecodeBinary is the
// caller's tool for turning it into bytes again.
package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnsupportedValueType is returned when a value cannot be normalized.
var ErrUnsupportedValueType = errors.New("unsupported value type")

// ErrMalformedRecord is returned when stored text does not parse.
var ErrMalformedRecord = errors.New("malformed record")

// Kind identifies the shape of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota // zero Value, never valid
	KindNull
	KindString
	KindNumber
	KindBool
	KindBytes
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "invalid"
}

// Member is one key/value pair of a map Value.
type Member struct {
	Key   string
	Value Value
}

// Field is shorthand for Member{Key: key, Value: v}.
func Field(key string, v Value) Member {
	return Member{Key: key, Value: v}
}

// Value is an immutable node of a record tree.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	raw     []byte
	items   []Value
	members []Member
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int returns a number value holding n.
func Int(n int64) Value { return Value{kind: KindNumber, num: float64(n)} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Bytes returns a binary value. The slice is copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte{}, b...)}
}

// List returns an ordered list value.
func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value{}, items...)}
}

// Map returns a map value whose members keep the given order.
func Map(members ...Member) Value {
	return Value{kind: KindMap, members: append([]Member{}, members...)}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsValid() bool  { return v.kind != KindInvalid }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Items() []Value { return append([]Value{}, v.items...) }

// Members returns the map members in insertion order.
func (v Value) Members() []Member { return append([]Member{}, v.members...) }

// Len returns the number of list items or map members.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.members)
	}
	return 0
}

// Str returns the string held by a string value.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the number held by a number value.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Int64 returns the number held by v when it is integral.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber || v.num != math.Trunc(v.num) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
	if v.num < math.MinInt64 || v.num >= math.MaxInt64 {
		return 0, false
	}
	return int64(v.num), true
}

// BoolValue returns the boolean held by a bool value.
func (v Value) BoolValue() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// Raw returns a copy of the bytes held by a bytes value.
func (v Value) Raw() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return append([]byte{}, v.raw...), true
}

// Get returns the member named key of a map value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// With returns a copy of the map v with key set to x. An existing member keeps
// its position; a new one is appended.
func (v Value) With(key string, x Value) Value {
	if v.kind != KindMap {
		return v
	}
	members := append([]Member{}, v.members...)
	for i := range members {
		if members[i].Key == key {
			members[i].Value = x
			return Value{kind: KindMap, members: members}
		}
	}
	return Value{kind: KindMap, members: append(members, Member{Key: key, Value: x})}
}

// Text renders scalar values the way they are used inside store keys:
// strings verbatim, numbers in shortest decimal form.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return "", false
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	}
	return "", false
}

func (v Value) GoString() string {
	s, err := Serialize(v)
	if err != nil {
		return fmt.Sprintf("value.Value{%s, %v}", v.kind, err)
	}
	return s
}

// Equal reports whether a and b are structurally equal after
// canonicalization. Bytes equal their canonical string form and map member
// order is ignored.
func Equal(a, b Value) bool {
	ca, err := Canonicalize(a)
	if err != nil {
		return false
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false
	}
	return equal(ca, cb)
}

func equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.boolean == b.boolean
	case KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other, ok := b.Get(m.Key)
			if !ok || !equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}
