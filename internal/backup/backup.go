// Package backup exports and imports every record of a namespaced store.
//
// A backup is the magic header followed by varint-delimited protobuf
// google.protobuf.Struct messages, one per record:
//
//	{"namespace": "session", "id": "+100.1", "record": {...}}
//
// Records are canonicalized before export. Map member order is not kept:
// protobuf Struct fields are unordered, so imported maps come back with keys
// sorted.
package backup

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gwillem/signal-store/internal/kv"
	"github.com/gwillem/signal-store/internal/value"
)

// Magic starts every backup stream.
const Magic = "SGSTBAK1"

// ErrNotBackup is returned by Import when the stream does not start with Magic.
var ErrNotBackup = errors.New("backup: not a signal-store backup")

// Export writes every record of every namespace to w and returns the number
// of records written. Namespaces and ids are written in sorted order.
func Export(w io.Writer, n *kv.Namespaced) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return 0, fmt.Errorf("backup: write header: %w", err)
	}

	namespaces, err := n.Namespaces()
	if err != nil {
		return 0, fmt.Errorf("backup: list namespaces: %w", err)
	}

	count := 0
	for _, ns := range namespaces {
		ids, err := n.IDs(ns)
		if err != nil {
			return count, fmt.Errorf("backup: list %s: %w", ns, err)
		}
		for _, id := range ids {
			rec, ok, err := n.Get(ns, id)
			if err != nil {
				return count, fmt.Errorf("backup: read %s/%s: %w", ns, id, err)
			}
			if !ok {
				continue
			}
			entry, err := newEntry(ns, id, rec)
			if err != nil {
				return count, fmt.Errorf("backup: encode %s/%s: %w", ns, id, err)
			}
			if _, err := protodelim.MarshalTo(bw, entry); err != nil {
				return count, fmt.Errorf("backup: write %s/%s: %w", ns, id, err)
			}
			count++
		}
	}

	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("backup: flush: %w", err)
	}
	return count, nil
}

// Import reads a backup from r and upserts every record into n. A broken
// stream stops the import; a record that cannot be stored is skipped and
// reported in the returned error. The count is the number of records stored.
func Import(r io.Reader, n *kv.Namespaced) (int, error) {
	br := bufio.NewReader(r)
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, header); err != nil || !bytes.Equal(header, []byte(Magic)) {
		return 0, ErrNotBackup
	}

	var errs *multierror.Error
	count := 0
	for {
		entry := &structpb.Struct{}
		err := protodelim.UnmarshalFrom(br, entry)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("backup: read entry %d: %w: %w", count, value.ErrMalformedRecord, err)
		}

		ns, id, rec, err := parseEntry(entry)
		if err != nil {
			return count, fmt.Errorf("backup: entry %d: %w", count, err)
		}
		if err := n.Put(ns, id, rec); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		count++
	}
	return count, errs.ErrorOrNil()
}

func newEntry(ns, id string, rec value.Value) (*structpb.Struct, error) {
	c, err := value.Canonicalize(rec)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"namespace": structpb.NewStringValue(ns),
		"id":        structpb.NewStringValue(id),
		"record":    toProto(c),
	}}, nil
}

func parseEntry(entry *structpb.Struct) (string, string, value.Value, error) {
	ns := entry.GetFields()["namespace"].GetStringValue()
	id := entry.GetFields()["id"].GetStringValue()
	pv, ok := entry.GetFields()["record"]
	if ns == "" || id == "" || !ok {
		return "", "", value.Value{}, fmt.Errorf("%w: entry needs namespace, id and record", value.ErrMalformedRecord)
	}
	rec, err := fromProto(pv)
	if err != nil {
		return "", "", value.Value{}, err
	}
	return ns, id, rec, nil
}

// toProto converts a canonical value.
func toProto(v value.Value) *structpb.Value {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.Str()
		return structpb.NewStringValue(s)
	case value.KindNumber:
		f, _ := v.Num()
		return structpb.NewNumberValue(f)
	case value.KindBool:
		b, _ := v.BoolValue()
		return structpb.NewBoolValue(b)
	case value.KindList:
		items := v.Items()
		list := &structpb.ListValue{Values: make([]*structpb.Value, len(items))}
		for i, item := range items {
			list.Values[i] = toProto(item)
		}
		return structpb.NewListValue(list)
	case value.KindMap:
		s := &structpb.Struct{Fields: make(map[string]*structpb.Value, v.Len())}
		for _, m := range v.Members() {
			s.Fields[m.Key] = toProto(m.Value)
		}
		return structpb.NewStructValue(s)
	}
	return structpb.NewNullValue()
}

func fromProto(pv *structpb.Value) (value.Value, error) {
	switch k := pv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return value.Null(), nil
	case *structpb.Value_StringValue:
		return value.String(k.StringValue), nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return value.Value{}, fmt.Errorf("%w: non-finite number", value.ErrMalformedRecord)
		}
		return value.Number(k.NumberValue), nil
	case *structpb.Value_BoolValue:
		return value.Bool(k.BoolValue), nil
	case *structpb.Value_ListValue:
		items := make([]value.Value, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			v, err := fromProto(item)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.List(items...), nil
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		members := make([]value.Member, 0, len(keys))
		for _, key := range keys {
			v, err := fromProto(fields[key])
			if err != nil {
				return value.Value{}, err
			}
			members = append(members, value.Field(key, v))
		}
		return value.Map(members...), nil
	}
	return value.Value{}, fmt.Errorf("%w: empty value", value.ErrMalformedRecord)
}
