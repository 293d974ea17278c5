package store

import "github.com/gwillem/signal-store/internal/value"

// GetAllPreKeys returns every one-time pre-key record.
func (s *Store) GetAllPreKeys() ([]value.Value, error) {
	return s.getAll(NamespacePreKey)
}

// GetPreKeyByID loads a one-time pre-key record by ID.
func (s *Store) GetPreKeyByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespacePreKey, id)
}

// CreateOrUpdatePreKey stores a one-time pre-key record.
func (s *Store) CreateOrUpdatePreKey(data value.Value) error {
	return s.createOrUpdate(NamespacePreKey, data)
}

// RemovePreKeyByID deletes a one-time pre-key record, typically after it was
// consumed by an incoming session.
func (s *Store) RemovePreKeyByID(id string) error {
	return s.removeByID(NamespacePreKey, id)
}

// RemoveAllPreKeys deletes every one-time pre-key record.
func (s *Store) RemoveAllPreKeys() error {
	return s.removeAll(NamespacePreKey)
}

// GetAllSignedPreKeys returns every signed pre-key record.
func (s *Store) GetAllSignedPreKeys() ([]value.Value, error) {
	return s.getAll(NamespaceSignedPreKey)
}

// GetSignedPreKeyByID loads a signed pre-key record by ID.
func (s *Store) GetSignedPreKeyByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespaceSignedPreKey, id)
}

// CreateOrUpdateSignedPreKey stores a signed pre-key record.
func (s *Store) CreateOrUpdateSignedPreKey(data value.Value) error {
	return s.createOrUpdate(NamespaceSignedPreKey, data)
}

// RemoveSignedPreKeyByID deletes a signed pre-key record.
func (s *Store) RemoveSignedPreKeyByID(id string) error {
	return s.removeByID(NamespaceSignedPreKey, id)
}

// RemoveAllSignedPreKeys deletes every signed pre-key record.
func (s *Store) RemoveAllSignedPreKeys() error {
	return s.removeAll(NamespaceSignedPreKey)
}
