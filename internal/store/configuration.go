package store

import "github.com/gwillem/signal-store/internal/value"

// GetAllConfiguration returns every configuration record.
func (s *Store) GetAllConfiguration() ([]value.Value, error) {
	return s.getAll(NamespaceConfiguration)
}

// GetConfigurationByID loads one configuration record.
func (s *Store) GetConfigurationByID(id string) (value.Value, bool, error) {
	return s.getByID(NamespaceConfiguration, id)
}

// CreateOrUpdateConfiguration stores a configuration record under its id.
func (s *Store) CreateOrUpdateConfiguration(data value.Value) error {
	return s.createOrUpdate(NamespaceConfiguration, data)
}

// RemoveConfigurationByID deletes one configuration record.
func (s *Store) RemoveConfigurationByID(id string) error {
	return s.removeByID(NamespaceConfiguration, id)
}

// RemoveAllConfiguration deletes every configuration record.
func (s *Store) RemoveAllConfiguration() error {
	return s.removeAll(NamespaceConfiguration)
}
