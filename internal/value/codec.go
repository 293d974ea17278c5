package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// Serialize canonicalizes v and encodes it as JSON. Object members are
// written in insertion order.
func Serialize(v Value) (string, error) {
	return serialize(v)
}

// SerializeIndent is Serialize with two-space indentation, for display.
func SerializeIndent(v Value) (string, error) {
	return serialize(v, jsontext.WithIndent("  "))
}

func serialize(v Value, opts ...jsontext.Options) (string, error) {
	c, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := encode(enc, c); err != nil {
		return "", fmt.Errorf("value: encode: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func encode(enc *jsontext.Encoder, v Value) error {
	switch v.kind {
	case KindNull:
		return enc.WriteToken(jsontext.Null)
	case KindString:
		return enc.WriteToken(jsontext.String(v.str))
	case KindNumber:
		return enc.WriteToken(jsontext.Float(v.num))
	case KindBool:
		return enc.WriteToken(jsontext.Bool(v.boolean))
	case KindList:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range v.items {
			if err := encode(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case KindMap:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, m := range v.members {
			if err := enc.WriteToken(jsontext.String(m.Key)); err != nil {
				return err
			}
			if err := encode(enc, m.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedValueType, v.kind)
}

// Deserialize parses text produced by Serialize. Object member order is
// preserved. Anything that is not exactly one JSON value fails with
// ErrMalformedRecord.
func Deserialize(text string) (Value, error) {
	dec := jsontext.NewDecoder(strings.NewReader(text))
	v, err := decode(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data after value", ErrMalformedRecord)
	}
	return v, nil
}

func decode(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}
	switch tok.Kind() {
	case 'n':
		return Null(), nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		f := tok.Float()
		if math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("number %s out of range", tok.String())
		}
		return Number(f), nil
	case '[':
		items := []Value{}
		for dec.PeekKind() != ']' {
			item, err := decode(dec)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return Value{kind: KindList, items: items}, nil
	case '{':
		members := []Member{}
		seen := map[string]struct{}{}
		for dec.PeekKind() != '}' {
			// A token is only valid until the next read.
			name, err := dec.ReadToken()
			if err != nil {
				return Value{}, err
			}
			key := name.String()
			if _, dup := seen[key]; dup {
				return Value{}, fmt.Errorf("duplicate member %q", key)
			}
			seen[key] = struct{}{}
			item, err := decode(dec)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: key, Value: item})
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, members: members}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok.Kind())
}
