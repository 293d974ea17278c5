package kv

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/gwillem/signal-store/internal/value"
)

// SealNamespace holds the sealing salt and passphrase check inside the
// wrapped medium. It is hidden from Keys.
const SealNamespace = ".seal"

// ErrWrongPassphrase is returned by OpenSealed when the passphrase does not
// match the one the medium was sealed with.
var ErrWrongPassphrase = errors.New("wrong passphrase")

var (
	saltKey  = Key{Namespace: SealNamespace, ID: "salt"}
	checkKey = Key{Namespace: SealNamespace, ID: "check"}
)

const checkText = "signal-store"

// scrypt parameters for passphrase keys.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// SealedMedium encrypts every value with XChaCha20-Poly1305 before handing
// it to the wrapped medium. The key is bound into the associated data, so a
// ciphertext copied to another key fails to open.
type SealedMedium struct {
	inner Medium
	aead  cipher.AEAD
}

// NewSealedMedium wraps inner with a raw 32-byte key.
func NewSealedMedium(inner Medium, key []byte) (*SealedMedium, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("kv: seal key: %w", err)
	}
	return &SealedMedium{inner: inner, aead: aead}, nil
}

// OpenSealed wraps inner with a key derived from passphrase. The salt is
// created on first use and stored in inner; a sealed check value detects a
// wrong passphrase on later opens.
func OpenSealed(inner Medium, passphrase string) (*SealedMedium, error) {
	salt, err := loadOrCreateSalt(inner)
	if err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("kv: derive seal key: %w", err)
	}
	m, err := NewSealedMedium(inner, key)
	if err != nil {
		return nil, err
	}

	_, ok, err := inner.Get(checkKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := m.put(checkKey, checkText); err != nil {
			return nil, err
		}
		return m, nil
	}
	got, _, err := m.get(checkKey)
	if errors.Is(err, ErrStorageIO) {
		return nil, err
	}
	if err != nil || got != checkText {
		return nil, ErrWrongPassphrase
	}
	return m, nil
}

func loadOrCreateSalt(inner Medium) ([]byte, error) {
	text, ok, err := inner.Get(saltKey)
	if err != nil {
		return nil, err
	}
	if ok {
		salt, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("kv: seal salt: %w: %w", value.ErrMalformedRecord, err)
		}
		return salt, nil
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("kv: seal salt: %w", err)
	}
	if err := inner.Put(saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}

func associatedData(key Key) []byte {
	ad := make([]byte, 0, len(key.Namespace)+1+len(key.ID))
	ad = append(ad, key.Namespace...)
	ad = append(ad, 0)
	return append(ad, key.ID...)
}

func (m *SealedMedium) put(key Key, text string) error {
	nonce := make([]byte, m.aead.NonceSize(), m.aead.NonceSize()+len(text)+m.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("kv: seal nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(text), associatedData(key))
	return m.inner.Put(key, base64.StdEncoding.EncodeToString(sealed))
}

func (m *SealedMedium) get(key Key) (string, bool, error) {
	text, ok, err := m.inner.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}
	sealed, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return "", false, fmt.Errorf("kv: unseal %s: %w: %w", key, value.ErrMalformedRecord, err)
	}
	if len(sealed) < m.aead.NonceSize() {
		return "", false, fmt.Errorf("kv: unseal %s: %w: short ciphertext", key, value.ErrMalformedRecord)
	}
	nonce, ct := sealed[:m.aead.NonceSize()], sealed[m.aead.NonceSize():]
	plain, err := m.aead.Open(nil, nonce, ct, associatedData(key))
	if err != nil {
		return "", false, fmt.Errorf("kv: unseal %s: %w: %w", key, value.ErrMalformedRecord, err)
	}
	return string(plain), true, nil
}

func (m *SealedMedium) Put(key Key, text string) error {
	if key.Namespace == SealNamespace {
		return fmt.Errorf("kv: namespace %s is reserved", SealNamespace)
	}
	return m.put(key, text)
}

func (m *SealedMedium) Get(key Key) (string, bool, error) {
	if key.Namespace == SealNamespace {
		return "", false, nil
	}
	return m.get(key)
}

func (m *SealedMedium) Remove(key Key) error {
	if key.Namespace == SealNamespace {
		return nil
	}
	return m.inner.Remove(key)
}

func (m *SealedMedium) Keys() ([]Key, error) {
	keys, err := m.inner.Keys()
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if k.Namespace != SealNamespace {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *SealedMedium) Close() error { return m.inner.Close() }
