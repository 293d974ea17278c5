package store

import "github.com/gwillem/signal-store/internal/value"

// GetAllIdentityKeys returns every stored remote identity key record.
func (s *Store) GetAllIdentityKeys() ([]value.Value, error) {
	return s.getAll(NamespaceIdentityKey)
}

// GetIdentityKeyByID loads a remote identity key record.
// Returns ok=false if no record exists for id.
func (s *Store) GetIdentityKeyByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespaceIdentityKey, id)
}

// CreateOrUpdateIdentityKey stores a remote identity key record under its id.
func (s *Store) CreateOrUpdateIdentityKey(data value.Value) error {
	return s.createOrUpdate(NamespaceIdentityKey, data)
}

// RemoveIdentityKeyByID deletes a remote identity key record.
func (s *Store) RemoveIdentityKeyByID(id string) error {
	return s.removeByID(NamespaceIdentityKey, id)
}
