package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Canonicalize returns the text-safe form of v: Bytes nodes become binary
// strings, everything else is validated and copied. It fails with
// ErrUnsupportedValueType rather than dropping anything it cannot represent.
func Canonicalize(v Value) (Value, error) {
	return canonicalize(v, "$")
}

func canonicalize(v Value, path string) (Value, error) {
	switch v.kind {
	case KindNull, KindBool:
		return v, nil
	case KindString:
		if !utf8.ValidString(v.str) {
			return Value{}, fmt.Errorf("%w: invalid UTF-8 string at %s", ErrUnsupportedValueType, path)
		}
		return v, nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return Value{}, fmt.Errorf("%w: non-finite number at %s", ErrUnsupportedValueType, path)
		}
		return v, nil
	case KindBytes:
		return String(binaryString(v.raw)), nil
	case KindList:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			c, err := canonicalize(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return Value{}, err
			}
			items[i] = c
		}
		return Value{kind: KindList, items: items}, nil
	case KindMap:
		seen := make(map[string]struct{}, len(v.members))
		members := make([]Member, len(v.members))
		for i, m := range v.members {
			if _, dup := seen[m.Key]; dup {
				return Value{}, fmt.Errorf("%w: duplicate key %q at %s", ErrUnsupportedValueType, m.Key, path)
			}
			seen[m.Key] = struct{}{}
			if !utf8.ValidString(m.Key) {
				return Value{}, fmt.Errorf("%w: invalid UTF-8 key at %s", ErrUnsupportedValueType, path)
			}
			c, err := canonicalize(m.Value, path+"."+m.Key)
			if err != nil {
				return Value{}, err
			}
			members[i] = Member{Key: m.Key, Value: c}
		}
		return Value{kind: KindMap, members: members}, nil
	}
	return Value{}, fmt.Errorf("%w: %s value at %s", ErrUnsupportedValueType, v.kind, path)
}

// binaryString maps every byte to the code point of the same number.
func binaryString(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// DecodeBinary reverses the Bytes canonicalization: every code point of s
// must be in 0..255 and becomes one byte.
func DecodeBinary(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0xff {
			return nil, fmt.Errorf("value: code point %U at offset %d is not a byte", r, i)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// FromGo converts native Go data into a Value. Supported: nil, Value, string,
// bool, integer and float kinds, []byte, []any, []string, map[string]any
// (keys sorted). Anything else fails with ErrUnsupportedValueType.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case []byte:
		return Bytes(t), nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return List(items...), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := FromGo(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			v, err := FromGo(t[k])
			if err != nil {
				return Value{}, err
			}
			members[i] = Field(k, v)
		}
		return Map(members...), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValueType, x)
}
