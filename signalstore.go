// Package signalstore is a local persistence layer for Signal protocol state.
//
// It keeps identity keys, sessions, pre-keys, signed pre-keys, queued
// envelopes, groups and client configuration as JSON records in named
// namespaces on a pluggable medium (SQLite, bbolt, a directory of files, or
// memory), optionally sealed with a passphrase.
//
//	s, err := signalstore.Open("sqlite:///home/me/.local/share/signal-store/default/store.db")
//	if err != nil { ... }
//	defer s.Close()
//	err = s.CreateOrUpdateSession(signalstore.Map(
//		signalstore.Field("id", signalstore.String("+15551234567.1")),
//		signalstore.Field("number", signalstore.String("+15551234567")),
//		signalstore.Field("record", signalstore.Bytes(serialized)),
//	))
package signalstore

import (
	"io"
	"path/filepath"

	"github.com/gwillem/signal-store/internal/backup"
	"github.com/gwillem/signal-store/internal/kv"
	"github.com/gwillem/signal-store/internal/receiver"
	"github.com/gwillem/signal-store/internal/store"
	"github.com/gwillem/signal-store/internal/value"
)

// Store is the protocol state repository.
type Store = store.Store

// ProtocolStore is the storage surface a protocol engine consumes.
type ProtocolStore = store.ProtocolStore

// Account holds the credentials of the local account.
type Account = store.Account

// Option configures Open.
type Option = store.Option

// Value is a stored record or one of its fields.
type Value = value.Value

// Member is one key/value pair of a map Value.
type Member = value.Member

// Receiver is a running message pipeline that can be stopped.
type Receiver = receiver.Receiver

// Registry tracks running receivers.
type Registry = receiver.Registry

// Errors returned by the store. Test with errors.Is.
var (
	ErrUnsupportedValueType = value.ErrUnsupportedValueType
	ErrMalformedRecord      = value.ErrMalformedRecord
	ErrStorageIO            = kv.ErrStorageIO
	ErrRecordNotFound       = kv.ErrRecordNotFound
	ErrInvalidDSN           = kv.ErrInvalidDSN
	ErrWrongPassphrase      = kv.ErrWrongPassphrase
	ErrNotBackup            = backup.ErrNotBackup
)

// Value constructors.
var (
	Null   = value.Null
	String = value.String
	Number = value.Number
	Int    = value.Int
	Bool   = value.Bool
	Bytes  = value.Bytes
	List   = value.List
	Map    = value.Map
	Field  = value.Field
)

// Options for Open.
var (
	WithLogger     = store.WithLogger
	WithPassphrase = store.WithPassphrase
)

// Open opens the store at dsn. Supported forms are sqlite:///path,
// bolt:///path, dir:///path, memory: and a bare file path (SQLite). An empty
// dsn opens the default SQLite database in DefaultDataDir.
func Open(dsn string, opts ...Option) (*Store, error) {
	return store.Open(dsn, opts...)
}

// OpenAccount opens the SQLite store of one account below base.
func OpenAccount(base, account string, opts ...Option) (*Store, error) {
	dir, err := AccountDir(base, account)
	if err != nil {
		return nil, err
	}
	dsn, err := kv.FileDSN("sqlite", filepath.Join(dir, "store.db"))
	if err != nil {
		return nil, err
	}
	return store.Open(dsn, opts...)
}

// DefaultDataDir returns $XDG_DATA_HOME/signal-store, falling back to
// ~/.local/share/signal-store.
func DefaultDataDir() string { return store.DefaultDataDir() }

// AccountDir returns the data directory of account below base.
func AccountDir(base, account string) (string, error) {
	return store.AccountDir(base, account)
}

// NewRegistry returns an empty receiver registry.
var NewRegistry = receiver.NewRegistry

// Export writes a backup of every record in s to w.
func Export(w io.Writer, s *Store) (int, error) {
	return backup.Export(w, s.KV())
}

// Import restores a backup from r into s, overwriting records with the same
// namespace and id.
func Import(r io.Reader, s *Store) (int, error) {
	return backup.Import(r, s.KV())
}

// Serialize renders v as the JSON text the store persists.
func Serialize(v Value) (string, error) { return value.Serialize(v) }

// Deserialize parses stored JSON text.
func Deserialize(text string) (Value, error) { return value.Deserialize(text) }

// DecodeBinary turns a binary string read back from a byte field into bytes.
func DecodeBinary(s string) ([]byte, error) { return value.DecodeBinary(s) }
