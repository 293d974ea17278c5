package store

import "github.com/gwillem/signal-store/internal/value"

// IdentityKeyStore stores remote identity key records.
type IdentityKeyStore interface {
	GetAllIdentityKeys() ([]value.Value, error)
	GetIdentityKeyByID(id string) (value.Value, bool, error)
	CreateOrUpdateIdentityKey(data value.Value) error
	RemoveIdentityKeyByID(id string) error
}

// SessionStore stores session records, one per remote device.
type SessionStore interface {
	GetAllSessions() ([]value.Value, error)
	GetSessionByID(id string) (value.Value, bool, error)
	CreateOrUpdateSession(data value.Value) error
	RemoveSessionByID(id string) error
	RemoveSessionsByNumber(number string) (int, error)
	RemoveAllSessions() error
}

// PreKeyStore stores one-time pre-key records.
type PreKeyStore interface {
	GetAllPreKeys() ([]value.Value, error)
	GetPreKeyByID(id string) (value.Value, bool, error)
	CreateOrUpdatePreKey(data value.Value) error
	RemovePreKeyByID(id string) error
	RemoveAllPreKeys() error
}

// SignedPreKeyStore stores signed pre-key records.
type SignedPreKeyStore interface {
	GetAllSignedPreKeys() ([]value.Value, error)
	GetSignedPreKeyByID(id string) (value.Value, bool, error)
	CreateOrUpdateSignedPreKey(data value.Value) error
	RemoveSignedPreKeyByID(id string) error
	RemoveAllSignedPreKeys() error
}

// UnprocessedStore queues received envelopes that still need decrypting.
type UnprocessedStore interface {
	GetAllUnprocessed() ([]value.Value, error)
	GetUnprocessedCount() (int, error)
	GetUnprocessedByID(id string) (value.Value, bool, error)
	SaveUnprocessed(data value.Value) error
	UpdateUnprocessedAttempts(id string, attempts int) error
	UpdateUnprocessedWithData(id string, data value.Value) error
	RemoveUnprocessed(id string) error
	RemoveAllUnprocessed() error
}

// GroupStore stores group records.
type GroupStore interface {
	CreateOrUpdateGroup(data value.Value) error
	GetGroupByID(id string) (value.Value, bool, error)
	GetAllGroups() ([]value.Value, error)
	GetAllGroupIDs() ([]value.Value, error)
	RemoveGroupByID(id string) error
	RemoveAllGroups() error
}

// ConfigurationStore stores opaque client settings.
type ConfigurationStore interface {
	GetAllConfiguration() ([]value.Value, error)
	GetConfigurationByID(id string) (value.Value, bool, error)
	CreateOrUpdateConfiguration(data value.Value) error
	RemoveConfigurationByID(id string) error
	RemoveAllConfiguration() error
}

// ProtocolStore is everything a protocol engine needs from local storage.
type ProtocolStore interface {
	IdentityKeyStore
	SessionStore
	PreKeyStore
	SignedPreKeyStore
	UnprocessedStore
	GroupStore
	ConfigurationStore
	RemoveAll() error
}

var _ ProtocolStore = (*Store)(nil)
