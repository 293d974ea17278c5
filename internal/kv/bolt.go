package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltMedium stores each namespace in its own bbolt bucket.
type BoltMedium struct {
	db *bbolt.DB
}

// OpenBolt opens or creates a bbolt medium at path. bbolt holds an exclusive
// file lock, so a second process opening the same file times out after a
// second instead of blocking forever.
func OpenBolt(path string) (*BoltMedium, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, ioError("create dir", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, ioError("open bolt", err)
	}
	return &BoltMedium{db: db}, nil
}

func (m *BoltMedium) Put(key Key, text string) error {
	err := m.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(key.Namespace))
		if err != nil {
			return fmt.Errorf("creating bucket %s: %w", key.Namespace, err)
		}
		return b.Put([]byte(key.ID), []byte(text))
	})
	if err != nil {
		return ioError("bolt put", err)
	}
	return nil
}

func (m *BoltMedium) Get(key Key) (string, bool, error) {
	var (
		text string
		ok   bool
	)
	err := m.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(key.Namespace))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key.ID)); v != nil {
			// v is only valid inside the transaction; string() copies it.
			text, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, ioError("bolt get", err)
	}
	return text, ok, nil
}

func (m *BoltMedium) Remove(key Key) error {
	err := m.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(key.Namespace))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key.ID))
	})
	if err != nil {
		return ioError("bolt remove", err)
	}
	return nil
}

func (m *BoltMedium) Keys() ([]Key, error) {
	var keys []Key
	err := m.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			ns := string(name)
			return b.ForEach(func(k, v []byte) error {
				if v == nil { // nested bucket
					return nil
				}
				keys = append(keys, Key{Namespace: ns, ID: string(k)})
				return nil
			})
		})
	})
	if err != nil {
		return nil, ioError("bolt keys", err)
	}
	return keys, nil
}

func (m *BoltMedium) Close() error {
	if m.db == nil {
		return nil
	}
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("kv: close bolt: %w", err)
	}
	return nil
}
