package kv

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/gwillem/signal-store/internal/value"
)

// Namespaced stores records under (namespace, id) on top of a Medium.
type Namespaced struct {
	medium Medium
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// Option configures a Namespaced store.
type Option func(*Namespaced)

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(n *Namespaced) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNamespaced wraps m.
func NewNamespaced(m Medium, opts ...Option) *Namespaced {
	n := &Namespaced{
		medium: m,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:  map[string]*sync.RWMutex{},
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Medium returns the underlying medium.
func (n *Namespaced) Medium() Medium { return n.medium }

// Close closes the underlying medium.
func (n *Namespaced) Close() error { return n.medium.Close() }

func (n *Namespaced) lock(ns string) *sync.RWMutex {
	n.mu.Lock()
	defer n.mu.Unlock()
	l, ok := n.locks[ns]
	if !ok {
		l = &sync.RWMutex{}
		n.locks[ns] = l
	}
	return l
}

// RecordID returns the key id of a record: its "id" member rendered as text.
// Records without a non-empty string or finite number id are rejected with
// value.ErrUnsupportedValueType.
func RecordID(record value.Value) (string, error) {
	if record.Kind() != value.KindMap {
		return "", fmt.Errorf("%w: record is a %s, not a map", value.ErrUnsupportedValueType, record.Kind())
	}
	idv, ok := record.Get("id")
	if !ok {
		return "", fmt.Errorf("%w: record has no id", value.ErrUnsupportedValueType)
	}
	id, ok := idv.Text()
	if !ok || id == "" {
		return "", fmt.Errorf("%w: record id must be a non-empty string or number, got %s", value.ErrUnsupportedValueType, idv.Kind())
	}
	return id, nil
}

// Put serializes record and stores it under (ns, id), replacing any previous
// record wholesale.
func (n *Namespaced) Put(ns, id string, record value.Value) error {
	if ns == "" || id == "" {
		return fmt.Errorf("kv: put %q/%q: %w: empty namespace or id", ns, id, value.ErrUnsupportedValueType)
	}
	text, err := value.Serialize(record)
	if err != nil {
		return fmt.Errorf("kv: put %s/%s: %w", ns, id, err)
	}

	l := n.lock(ns)
	l.Lock()
	defer l.Unlock()
	if err := n.medium.Put(Key{ns, id}, text); err != nil {
		return fmt.Errorf("kv: put %s/%s: %w", ns, id, err)
	}
	return nil
}

// Get returns the record stored under (ns, id). A missing record is ok=false
// with a nil error.
func (n *Namespaced) Get(ns, id string) (value.Value, bool, error) {
	if id == "" {
		return value.Value{}, false, nil
	}
	l := n.lock(ns)
	l.RLock()
	defer l.RUnlock()
	return n.get(Key{ns, id})
}

func (n *Namespaced) get(key Key) (value.Value, bool, error) {
	text, ok, err := n.medium.Get(key)
	if err != nil {
		return value.Value{}, false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	if !ok {
		return value.Value{}, false, nil
	}
	v, err := value.Deserialize(text)
	if err != nil {
		return value.Value{}, false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return v, true, nil
}

// scan returns every key of ns. It is a full pass over the medium's keys.
func (n *Namespaced) scan(ns string) ([]Key, error) {
	keys, err := n.medium.Keys()
	if err != nil {
		return nil, fmt.Errorf("kv: list keys: %w", err)
	}
	var out []Key
	for _, k := range keys {
		if k.Namespace == ns {
			out = append(out, k)
		}
	}
	return out, nil
}

// GetAll returns every record in ns, in the medium's enumeration order.
func (n *Namespaced) GetAll(ns string) ([]value.Value, error) {
	l := n.lock(ns)
	l.RLock()
	defer l.RUnlock()

	keys, err := n.scan(ns)
	if err != nil {
		return nil, err
	}
	records := make([]value.Value, 0, len(keys))
	for _, k := range keys {
		v, ok, err := n.get(k)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, v)
		}
	}
	return records, nil
}

// GetAllIDs returns the "id" member of every record in ns.
func (n *Namespaced) GetAllIDs(ns string) ([]value.Value, error) {
	records, err := n.GetAll(ns)
	if err != nil {
		return nil, err
	}
	ids := make([]value.Value, 0, len(records))
	for _, r := range records {
		id, ok := r.Get("id")
		if !ok {
			id = value.Null()
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the number of keys in ns. It scans on every call.
func (n *Namespaced) Count(ns string) (int, error) {
	l := n.lock(ns)
	l.RLock()
	defer l.RUnlock()

	keys, err := n.scan(ns)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// IDs returns the sorted key ids of ns.
func (n *Namespaced) IDs(ns string) ([]string, error) {
	l := n.lock(ns)
	l.RLock()
	defer l.RUnlock()

	keys, err := n.scan(ns)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
	}
	sort.Strings(ids)
	return ids, nil
}

// Namespaces returns the sorted set of namespaces present in the medium.
func (n *Namespaced) Namespaces() ([]string, error) {
	keys, err := n.medium.Keys()
	if err != nil {
		return nil, fmt.Errorf("kv: list keys: %w", err)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, k := range keys {
		if _, ok := seen[k.Namespace]; !ok {
			seen[k.Namespace] = struct{}{}
			out = append(out, k.Namespace)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Update applies fn to the record stored under (ns, id) and writes the result
// back. The namespace stays locked for the whole read-modify-write.
func (n *Namespaced) Update(ns, id string, fn func(value.Value) (value.Value, error)) error {
	l := n.lock(ns)
	l.Lock()
	defer l.Unlock()

	key := Key{ns, id}
	current, ok, err := n.get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("kv: update %s: %w", key, ErrRecordNotFound)
	}
	next, err := fn(current)
	if err != nil {
		return fmt.Errorf("kv: update %s: %w", key, err)
	}
	text, err := value.Serialize(next)
	if err != nil {
		return fmt.Errorf("kv: update %s: %w", key, err)
	}
	if err := n.medium.Put(key, text); err != nil {
		return fmt.Errorf("kv: update %s: %w", key, err)
	}
	return nil
}

// Remove deletes (ns, id).
func (n *Namespaced) Remove(ns, id string) error {
	if id == "" {
		return nil
	}
	l := n.lock(ns)
	l.Lock()
	defer l.Unlock()
	if err := n.medium.Remove(Key{ns, id}); err != nil {
		return fmt.Errorf("kv: remove %s/%s: %w", ns, id, err)
	}
	return nil
}

// RemoveAll deletes every key of ns. A failing key does not stop the pass;
// all failures are returned together.
func (n *Namespaced) RemoveAll(ns string) error {
	l := n.lock(ns)
	l.Lock()
	defer l.Unlock()

	keys, err := n.scan(ns)
	if err != nil {
		return err
	}
	_, err = n.removeKeys(keys)
	return err
}

// RemoveWhere scans ns and deletes every record match accepts. Records that
// fail to load are reported but do not stop the scan. It returns the number
// of records removed.
func (n *Namespaced) RemoveWhere(ns string, match func(value.Value) bool) (int, error) {
	l := n.lock(ns)
	l.Lock()
	defer l.Unlock()

	keys, err := n.scan(ns)
	if err != nil {
		return 0, err
	}
	var result *multierror.Error
	var doomed []Key
	for _, k := range keys {
		v, ok, err := n.get(k)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if ok && match(v) {
			doomed = append(doomed, k)
		}
	}
	removed, err := n.removeKeys(doomed)
	if err != nil {
		result = multierror.Append(result, err)
	}
	return removed, result.ErrorOrNil()
}

// Clear deletes every key in the medium, namespace by namespace.
func (n *Namespaced) Clear() error {
	keys, err := n.medium.Keys()
	if err != nil {
		return fmt.Errorf("kv: list keys: %w", err)
	}
	byNamespace := map[string][]Key{}
	for _, k := range keys {
		byNamespace[k.Namespace] = append(byNamespace[k.Namespace], k)
	}

	var result *multierror.Error
	for ns, nsKeys := range byNamespace {
		l := n.lock(ns)
		l.Lock()
		_, err := n.removeKeys(nsKeys)
		l.Unlock()
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// removeKeys removes every key, collecting failures. Callers hold the locks.
func (n *Namespaced) removeKeys(keys []Key) (int, error) {
	var result *multierror.Error
	removed := 0
	for _, k := range keys {
		if err := n.medium.Remove(k); err != nil {
			result = multierror.Append(result, fmt.Errorf("kv: remove %s: %w", k, err))
			continue
		}
		removed++
	}
	if result != nil {
		n.logger.Warn("bulk remove incomplete", "removed", removed, "failed", len(result.Errors))
	} else if len(keys) > 0 {
		n.logger.Debug("bulk remove", "removed", removed)
	}
	return removed, result.ErrorOrNil()
}
