// Package kv is the namespaced key-value layer under the protocol store.
//
// A Medium is any durable area that maps (namespace, id) keys to text.
// Namespaced adds record semantics on top of it: values are serialized with
// package value, every operation is guarded by a per-namespace lock, and
// lookups across a namespace are plain scans over the medium's key list.
//
// Nothing here is transactional. Writing two keys is two independent
// commits; a crash in between leaves either, both or neither on disk, and the
// caller decides how to recover.
package kv

import (
	"errors"
	"fmt"
)

// ErrStorageIO wraps every failure reported by a medium.
var ErrStorageIO = errors.New("storage i/o error")

// ErrRecordNotFound is returned by operations that need an existing record.
var ErrRecordNotFound = errors.New("record not found")

// Key is the composite address of a stored value. Namespace and ID are kept
// apart so that no two distinct pairs can alias each other.
type Key struct {
	Namespace string
	ID        string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Namespace, k.ID)
}

// Medium is durable string storage keyed by Key.
type Medium interface {
	// Put stores text under key, replacing any previous value.
	Put(key Key, text string) error
	// Get returns the text stored under key. A missing key is ok=false with a
	// nil error.
	Get(key Key) (text string, ok bool, err error)
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key Key) error
	// Keys lists every stored key in no particular order.
	Keys() ([]Key, error)
	Close() error
}

// ioError tags err as a medium failure while keeping the cause reachable.
func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageIO, op, err)
}
