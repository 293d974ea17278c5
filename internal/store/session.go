package store

import (
	"fmt"

	"github.com/gwillem/signal-store/internal/value"
)

// GetAllSessions returns every session record.
func (s *Store) GetAllSessions() ([]value.Value, error) {
	return s.getAll(NamespaceSession)
}

// GetSessionByID loads a session record. Returns ok=false if none exists.
func (s *Store) GetSessionByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespaceSession, id)
}

// CreateOrUpdateSession stores a session record under its id.
func (s *Store) CreateOrUpdateSession(data value.Value) error {
	return s.createOrUpdate(NamespaceSession, data)
}

// RemoveSessionByID deletes a single session record.
func (s *Store) RemoveSessionByID(id string) error {
	return s.removeByID(NamespaceSession, id)
}

// RemoveSessionsByNumber deletes every session whose "number" field equals
// number, across all devices of that number. There is no index: every call
// loads every session. Returns the number of sessions removed.
func (s *Store) RemoveSessionsByNumber(number string) (int, error) {
	removed, err := s.kv.RemoveWhere(NamespaceSession, func(v value.Value) bool {
		n, ok := v.Get("number")
		if !ok {
			return false
		}
		str, ok := n.Str()
		return ok && str == number
	})
	if removed > 0 {
		s.logger.Debug("removed sessions by number", "number", number, "count", removed)
	}
	if err != nil {
		return removed, fmt.Errorf("store: remove sessions by number: %w", err)
	}
	return removed, nil
}

// RemoveAllSessions deletes every session record.
func (s *Store) RemoveAllSessions() error {
	return s.removeAll(NamespaceSession)
}
