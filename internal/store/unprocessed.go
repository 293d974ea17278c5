package store

import (
	"fmt"

	"github.com/gwillem/signal-store/internal/kv"
	"github.com/gwillem/signal-store/internal/value"
)

// GetAllUnprocessed returns every queued envelope.
func (s *Store) GetAllUnprocessed() ([]value.Value, error) {
	return s.getAll(NamespaceUnprocessed)
}

// GetUnprocessedCount counts queued envelopes. The count is recomputed from
// the medium's key list on every call.
func (s *Store) GetUnprocessedCount() (int, error) {
	n, err := s.kv.Count(NamespaceUnprocessed)
	if err != nil {
		return 0, fmt.Errorf("store: count unprocessed: %w", err)
	}
	return n, nil
}

// GetUnprocessedByID loads a queued envelope. Returns ok=false if none exists.
func (s *Store) GetUnprocessedByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespaceUnprocessed, id)
}

// SaveUnprocessed queues an envelope under its id, replacing any previous
// envelope with the same id.
func (s *Store) SaveUnprocessed(data value.Value) error {
	return s.createOrUpdate(NamespaceUnprocessed, data)
}

// UpdateUnprocessedAttempts sets the "attempts" field of a queued envelope,
// keeping every other field. The envelope must exist; otherwise the error
// wraps kv.ErrRecordNotFound.
func (s *Store) UpdateUnprocessedAttempts(id string, attempts int) error {
	err := s.kv.Update(NamespaceUnprocessed, id, func(v value.Value) (value.Value, error) {
		return v.With("attempts", value.Int(int64(attempts))), nil
	})
	if err != nil {
		return fmt.Errorf("store: update unprocessed attempts: %w", err)
	}
	return nil
}

// UpdateUnprocessedWithData replaces the envelope stored under id with data.
// data gets an "id" of id when it has none; a different id is rejected.
func (s *Store) UpdateUnprocessedWithData(id string, data value.Value) error {
	if data.Kind() != value.KindMap {
		return fmt.Errorf("store: update unprocessed: %w: record is a %s", value.ErrUnsupportedValueType, data.Kind())
	}
	if _, ok := data.Get("id"); !ok {
		data = data.With("id", value.String(id))
	}
	got, err := kv.RecordID(data)
	if err != nil {
		return fmt.Errorf("store: update unprocessed: %w", err)
	}
	if got != id {
		return fmt.Errorf("store: update unprocessed: %w: record id %q does not match %q", value.ErrUnsupportedValueType, got, id)
	}
	return s.createOrUpdate(NamespaceUnprocessed, data)
}

// RemoveUnprocessed deletes a queued envelope.
func (s *Store) RemoveUnprocessed(id string) error {
	return s.removeByID(NamespaceUnprocessed, id)
}

// RemoveAllUnprocessed drops the whole queue.
func (s *Store) RemoveAllUnprocessed() error {
	return s.removeAll(NamespaceUnprocessed)
}
