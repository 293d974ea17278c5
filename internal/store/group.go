package store

import (
	"fmt"

	"github.com/gwillem/signal-store/internal/value"
)

// CreateOrUpdateGroup stores or updates a group record.
func (s *Store) CreateOrUpdateGroup(data value.Value) error {
	return s.createOrUpdate(NamespaceGroups, data)
}

// GetGroupByID retrieves a group by its id. Returns ok=false if not found.
func (s *Store) GetGroupByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespaceGroups, id)
}

// GetAllGroups retrieves all stored groups.
func (s *Store) GetAllGroups() ([]value.Value, error) {
	return s.getAll(NamespaceGroups)
}

// GetAllGroupIDs returns the id of every stored group, as stored (string or
// number).
func (s *Store) GetAllGroupIDs() ([]value.Value, error) {
	ids, err := s.kv.GetAllIDs(NamespaceGroups)
	if err != nil {
		return nil, fmt.Errorf("store: load group ids: %w", err)
	}
	return ids, nil
}

// RemoveGroupByID deletes a group record.
func (s *Store) RemoveGroupByID(id string) error {
	return s.removeByID(NamespaceGroups, id)
}

// RemoveAllGroups deletes every group record.
func (s *Store) RemoveAllGroups() error {
	return s.removeAll(NamespaceGroups)
}
