package store

import (
	"fmt"

	"github.com/gwillem/signal-store/internal/value"
)

// Account holds the post-link credentials of the local account. It is kept
// in the configuration namespace under the id "account"; key material is
// stored as binary strings.
type Account struct {
	Number            string
	ACI               string
	PNI               string
	Password          string
	DeviceID          int
	RegistrationID    int
	PNIRegistrationID int

	ACIIdentityKeyPrivate []byte
	ACIIdentityKeyPublic  []byte
	PNIIdentityKeyPrivate []byte
	PNIIdentityKeyPublic  []byte
	ProfileKey            []byte
	MasterKey             []byte
}

const accountID = "account"

// SaveAccount persists the account credentials.
func (s *Store) SaveAccount(acct *Account) error {
	rec := value.Map(
		value.Field("id", value.String(accountID)),
		value.Field("number", value.String(acct.Number)),
		value.Field("aci", value.String(acct.ACI)),
		value.Field("pni", value.String(acct.PNI)),
		value.Field("password", value.String(acct.Password)),
		value.Field("deviceId", value.Int(int64(acct.DeviceID))),
		value.Field("registrationId", value.Int(int64(acct.RegistrationID))),
		value.Field("pniRegistrationId", value.Int(int64(acct.PNIRegistrationID))),
		value.Field("aciIdentityKeyPrivate", value.Bytes(acct.ACIIdentityKeyPrivate)),
		value.Field("aciIdentityKeyPublic", value.Bytes(acct.ACIIdentityKeyPublic)),
		value.Field("pniIdentityKeyPrivate", value.Bytes(acct.PNIIdentityKeyPrivate)),
		value.Field("pniIdentityKeyPublic", value.Bytes(acct.PNIIdentityKeyPublic)),
		value.Field("profileKey", value.Bytes(acct.ProfileKey)),
		value.Field("masterKey", value.Bytes(acct.MasterKey)),
	)
	if err := s.CreateOrUpdateConfiguration(rec); err != nil {
		return fmt.Errorf("store: save account: %w", err)
	}
	return nil
}

// LoadAccount loads the account credentials.
// Returns nil, nil if no account has been saved.
func (s *Store) LoadAccount() (*Account, error) {
	rec, ok, err := s.GetConfigurationByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("store: load account: %w", err)
	}
	if !ok {
		return nil, nil
	}

	r := recordReader{rec: rec}
	acct := &Account{
		Number:                r.str("number"),
		ACI:                   r.str("aci"),
		PNI:                   r.str("pni"),
		Password:              r.str("password"),
		DeviceID:              r.int("deviceId"),
		RegistrationID:        r.int("registrationId"),
		PNIRegistrationID:     r.int("pniRegistrationId"),
		ACIIdentityKeyPrivate: r.bytes("aciIdentityKeyPrivate"),
		ACIIdentityKeyPublic:  r.bytes("aciIdentityKeyPublic"),
		PNIIdentityKeyPrivate: r.bytes("pniIdentityKeyPrivate"),
		PNIIdentityKeyPublic:  r.bytes("pniIdentityKeyPublic"),
		ProfileKey:            r.bytes("profileKey"),
		MasterKey:             r.bytes("masterKey"),
	}
	if r.err != nil {
		return nil, fmt.Errorf("store: load account: %w", r.err)
	}
	return acct, nil
}

// recordReader pulls typed fields out of a stored record. Missing fields
// read as zero values; the first type mismatch is kept in err.
type recordReader struct {
	rec value.Value
	err error
}

func (r *recordReader) field(key string) (value.Value, bool) {
	v, ok := r.rec.Get(key)
	if !ok || v.IsNull() {
		return value.Value{}, false
	}
	return v, true
}

func (r *recordReader) fail(key string, want string, got value.Value) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: field %q: want %s, got %s", value.ErrMalformedRecord, key, want, got.Kind())
	}
}

func (r *recordReader) str(key string) string {
	v, ok := r.field(key)
	if !ok {
		return ""
	}
	s, ok := v.Str()
	if !ok {
		r.fail(key, "string", v)
	}
	return s
}

func (r *recordReader) int(key string) int {
	v, ok := r.field(key)
	if !ok {
		return 0
	}
	n, ok := v.Int64()
	if !ok {
		r.fail(key, "integer", v)
	}
	return int(n)
}

func (r *recordReader) bytes(key string) []byte {
	v, ok := r.field(key)
	if !ok {
		return nil
	}
	s, ok := v.Str()
	if !ok {
		r.fail(key, "binary string", v)
		return nil
	}
	b, err := value.DecodeBinary(s)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("field %q: %w", key, err)
	}
	return b
}
