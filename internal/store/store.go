// Package store is the protocol state repository: one CRUD surface per
// record kind, each bound to a fixed namespace of the underlying kv store.
//
// Records are value.Value maps carrying a mandatory "id". The store never
// interprets key material; byte fields come back as binary strings and the
// protocol engine rebuilds its own types from them.
//
// Operations that touch several keys are not atomic. A crash between, say,
// removing a used prekey and saving the new session leaves each write
// independently committed or not.
package store

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gwillem/signal-store/internal/kv"
	"github.com/gwillem/signal-store/internal/value"
)

// Namespaces of the record kinds. The values are part of the on-disk format.
const (
	NamespaceIdentityKey   = "identityKey"
	NamespaceSession       = "session"
	NamespacePreKey        = "25519KeypreKey"
	NamespaceSignedPreKey  = "25519KeysignedKey"
	NamespaceUnprocessed   = "unprocessed"
	NamespaceGroups        = "groups"
	NamespaceConfiguration = "configuration"
)

// Namespaces lists every namespace the store manages.
var Namespaces = []string{
	NamespaceIdentityKey,
	NamespaceSession,
	NamespacePreKey,
	NamespaceSignedPreKey,
	NamespaceUnprocessed,
	NamespaceGroups,
	NamespaceConfiguration,
}

// Store persists protocol state records.
type Store struct {
	kv     *kv.Namespaced
	logger *slog.Logger
}

type options struct {
	logger     *slog.Logger
	passphrase string
}

// Option configures Open and New.
type Option func(*options)

// WithLogger sets the logger. If not set, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPassphrase seals every stored value with a key derived from
// passphrase.
func WithPassphrase(passphrase string) Option {
	return func(o *options) { o.passphrase = passphrase }
}

// DefaultDataDir returns the default data directory for signal-store.
// Uses $XDG_DATA_HOME/signal-store, falling back to ~/.local/share/signal-store.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "signal-store")
}

// Open opens the medium named by dsn (see kv.OpenDSN) and returns a store on
// top of it. If dsn is empty, it defaults to a SQLite database in
// DefaultDataDir.
func Open(dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		dsn = filepath.Join(DefaultDataDir(), "default.db")
	}
	m, err := kv.OpenDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open medium: %w", err)
	}
	s, err := New(m, opts...)
	if err != nil {
		m.Close()
		return nil, err
	}
	s.logger.Info("store opened", "dsn", dsn)
	return s, nil
}

// New returns a store on an already opened medium.
func New(m kv.Medium, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger := o.logger.With("component", "store")

	if o.passphrase != "" {
		sealed, err := kv.OpenSealed(m, o.passphrase)
		if err != nil {
			return nil, fmt.Errorf("store: open sealed medium: %w", err)
		}
		m = sealed
	}

	return &Store{
		kv:     kv.NewNamespaced(m, kv.WithLogger(logger)),
		logger: logger,
	}, nil
}

// Close closes the underlying medium.
func (s *Store) Close() error {
	return s.kv.Close()
}

// KV returns the namespaced store the repository is built on.
func (s *Store) KV() *kv.Namespaced { return s.kv }

// RemoveAll wipes every namespace, including ones this package does not
// manage. Every key is attempted; failures are returned together.
func (s *Store) RemoveAll() error {
	if err := s.kv.Clear(); err != nil {
		return fmt.Errorf("store: remove all: %w", err)
	}
	s.logger.Info("store wiped")
	return nil
}

// Stats returns the number of records per managed namespace.
func (s *Store) Stats() (map[string]int, error) {
	stats := make(map[string]int, len(Namespaces))
	for _, ns := range Namespaces {
		n, err := s.kv.Count(ns)
		if err != nil {
			return nil, fmt.Errorf("store: stats: %w", err)
		}
		stats[ns] = n
	}
	return stats, nil
}

func (s *Store) createOrUpdate(ns string, data value.Value) error {
	id, err := kv.RecordID(data)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", ns, err)
	}
	if err := s.kv.Put(ns, id, data); err != nil {
		return fmt.Errorf("store: save %s: %w", ns, err)
	}
	return nil
}

// getByID returns the record or ok=false when it does not exist.
func (s *Store) getByID(ns, id string) (value.Value, bool, error) {
	v, ok, err := s.kv.Get(ns, id)
	if err != nil {
		return value.Value{}, false, fmt.Errorf("store: load %s: %w", ns, err)
	}
	return v, ok, nil
}

func (s *Store) getAll(ns string) ([]value.Value, error) {
	all, err := s.kv.GetAll(ns)
	if err != nil {
		return nil, fmt.Errorf("store: load all %s: %w", ns, err)
	}
	return all, nil
}

func (s *Store) removeByID(ns, id string) error {
	if err := s.kv.Remove(ns, id); err != nil {
		return fmt.Errorf("store: remove %s: %w", ns, err)
	}
	return nil
}

func (s *Store) removeAll(ns string) error {
	if err := s.kv.RemoveAll(ns); err != nil {
		return fmt.Errorf("store: remove all %s: %w", ns, err)
	}
	return nil
}

// AccountDir returns the data directory of one account below base. An empty
// account name selects "default".
func AccountDir(base, account string) (string, error) {
	if account == "" {
		account = "default"
	}
	if account == "." || account == ".." || strings.ContainsAny(account, `/\`) {
		return "", fmt.Errorf("store: invalid account name %q", account)
	}
	return filepath.Join(base, account), nil
}
