package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/gwillem/signal-store/internal/kv"
	"github.com/gwillem/signal-store/internal/value"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func memStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(kv.NewMemoryMedium())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func session(id, number string, device int) value.Value {
	return value.Map(
		value.Field("id", value.String(id)),
		value.Field("number", value.String(number)),
		value.Field("deviceId", value.Int(int64(device))),
		value.Field("record", value.Bytes([]byte{0x0a, 0x00, 0xff})),
	)
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Fatal("directory should have been created")
	}
}

func TestOpenMedia(t *testing.T) {
	dir := t.TempDir()
	for _, dsn := range []string{
		"sqlite://" + filepath.Join(dir, "a.db"),
		"bolt://" + filepath.Join(dir, "b.bolt"),
		"dir://" + filepath.Join(dir, "c"),
		"memory:",
	} {
		t.Run(dsn, func(t *testing.T) {
			s, err := Open(dsn)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if err := s.CreateOrUpdateIdentityKey(value.Map(value.Field("id", value.String("+1.1")))); err != nil {
				t.Fatal(err)
			}
			if _, ok, err := s.GetIdentityKeyByID("+1.1"); err != nil || !ok {
				t.Fatalf("GetIdentityKeyByID: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestOpenInvalidDSN(t *testing.T) {
	if _, err := Open("ftp://example.com/x"); !errors.Is(err, kv.ErrInvalidDSN) {
		t.Fatalf("got %v, want ErrInvalidDSN", err)
	}
}

func TestIdentityKeyRoundTrip(t *testing.T) {
	s := tempStore(t)

	pub := make([]byte, 33)
	for i := range pub {
		pub[i] = byte(0xe0 + i%32)
	}
	rec := value.Map(
		value.Field("id", value.String("+15551234567")),
		value.Field("publicKey", value.Bytes(pub)),
		value.Field("verified", value.Int(0)),
		value.Field("firstUse", value.Bool(true)),
	)
	if err := s.CreateOrUpdateIdentityKey(rec); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetIdentityKeyByID("+15551234567")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected identity key")
	}

	// Bytes come back as a binary string, one code point per byte.
	pk, _ := got.Get("publicKey")
	str, isStr := pk.Str()
	if !isStr {
		t.Fatalf("publicKey kind: got %s, want string", pk.Kind())
	}
	decoded, err := value.DecodeBinary(str)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, pub) {
		t.Errorf("publicKey: got %x, want %x", decoded, pub)
	}
	if first, _ := got.Get("firstUse"); !value.Equal(first, value.Bool(true)) {
		t.Errorf("firstUse: got %#v", first)
	}
}

func TestGetMissingRecord(t *testing.T) {
	s := tempStore(t)

	getters := map[string]func(string) (value.Value, bool, error){
		"identityKey":   s.GetIdentityKeyByID,
		"session":       s.GetSessionByID,
		"preKey":        s.GetPreKeyByID,
		"signedPreKey":  s.GetSignedPreKeyByID,
		"unprocessed":   s.GetUnprocessedByID,
		"group":         s.GetGroupByID,
		"configuration": s.GetConfigurationByID,
	}
	for name, get := range getters {
		v, ok, err := get("nope")
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if ok || v.IsValid() {
			t.Errorf("%s: expected absent record, got %#v", name, v)
		}
	}
}

func TestCreateWithoutID(t *testing.T) {
	s := memStore(t)

	err := s.CreateOrUpdateSession(value.Map(value.Field("number", value.String("+1"))))
	if !errors.Is(err, value.ErrUnsupportedValueType) {
		t.Fatalf("got %v, want ErrUnsupportedValueType", err)
	}
	err = s.CreateOrUpdateGroup(value.String("not a record"))
	if !errors.Is(err, value.ErrUnsupportedValueType) {
		t.Fatalf("got %v, want ErrUnsupportedValueType", err)
	}
}

func TestNumericIDs(t *testing.T) {
	s := memStore(t)

	if err := s.CreateOrUpdatePreKey(value.Map(value.Field("id", value.Int(17)))); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetPreKeyByID("17"); !ok {
		t.Fatal("prekey 17 should be stored under \"17\"")
	}
}

func TestNamespaceIsolation(t *testing.T) {
	s := memStore(t)

	if err := s.CreateOrUpdateIdentityKey(value.Map(
		value.Field("id", value.String("x")),
		value.Field("kind", value.String("identity")),
	)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateOrUpdateSession(value.Map(
		value.Field("id", value.String("x")),
		value.Field("kind", value.String("session")),
	)); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveAllSessions(); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.GetIdentityKeyByID("x")
	if err != nil || !ok {
		t.Fatalf("identity key should survive session wipe: ok=%v err=%v", ok, err)
	}
	if k, _ := got.Get("kind"); !value.Equal(k, value.String("identity")) {
		t.Errorf("kind: got %#v", k)
	}
}

func TestRemoveSessionsByNumber(t *testing.T) {
	s := tempStore(t)

	for _, rec := range []value.Value{
		session("42", "+100", 1),
		session("43", "+100", 2),
		session("44", "+200", 1),
	} {
		if err := s.CreateOrUpdateSession(rec); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.RemoveSessionsByNumber("+100")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed: got %d, want 2", n)
	}

	all, err := s.GetAllSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("sessions: got %d, want 1", len(all))
	}
	if id, _ := all[0].Get("id"); !value.Equal(id, value.String("44")) {
		t.Errorf("remaining session: got %#v, want 44", id)
	}

	// No match is not an error.
	if n, err := s.RemoveSessionsByNumber("+999"); err != nil || n != 0 {
		t.Errorf("unknown number: n=%d err=%v", n, err)
	}
}

func TestRemoveSessionByID(t *testing.T) {
	s := memStore(t)

	if err := s.CreateOrUpdateSession(session("+100.1", "+100", 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveSessionByID("+100.1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetSessionByID("+100.1"); ok {
		t.Fatal("session should be removed")
	}
	// Removing again is a no-op.
	if err := s.RemoveSessionByID("+100.1"); err != nil {
		t.Fatal(err)
	}
}

func TestCreateOrUpdateReplaces(t *testing.T) {
	s := memStore(t)

	if err := s.CreateOrUpdateSession(session("1", "+100", 1)); err != nil {
		t.Fatal(err)
	}
	// The new record replaces the old one wholesale, no field merge.
	if err := s.CreateOrUpdateSession(value.Map(value.Field("id", value.String("1")))); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.GetSessionByID("1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Get("number"); ok {
		t.Errorf("number should be gone: %#v", got)
	}
}

func TestPreKeys(t *testing.T) {
	s := tempStore(t)

	for i := 1; i <= 5; i++ {
		rec := value.Map(
			value.Field("id", value.Int(int64(i))),
			value.Field("privateKey", value.Bytes([]byte{byte(i)})),
			value.Field("publicKey", value.Bytes([]byte{byte(i), 5})),
		)
		if err := s.CreateOrUpdatePreKey(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.CreateOrUpdateSignedPreKey(value.Map(
		value.Field("id", value.Int(1)),
		value.Field("signature", value.Bytes([]byte{1, 2, 3})),
	)); err != nil {
		t.Fatal(err)
	}

	if err := s.RemovePreKeyByID("3"); err != nil {
		t.Fatal(err)
	}
	all, err := s.GetAllPreKeys()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("prekeys: got %d, want 4", len(all))
	}

	if err := s.RemoveAllPreKeys(); err != nil {
		t.Fatal(err)
	}
	if all, _ := s.GetAllPreKeys(); len(all) != 0 {
		t.Errorf("prekeys after wipe: got %d, want 0", len(all))
	}
	// Signed prekeys live in their own namespace.
	if _, ok, _ := s.GetSignedPreKeyByID("1"); !ok {
		t.Error("signed prekey should survive prekey wipe")
	}
	if err := s.RemoveSignedPreKeyByID("1"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveAllSignedPreKeys(); err != nil {
		t.Fatal(err)
	}
	if all, _ := s.GetAllSignedPreKeys(); len(all) != 0 {
		t.Errorf("signed prekeys: got %d, want 0", len(all))
	}
}

func TestUnprocessedQueue(t *testing.T) {
	s := tempStore(t)

	const n, m = 6, 2
	for i := 0; i < n; i++ {
		rec := value.Map(
			value.Field("id", value.String(strconv.Itoa(i))),
			value.Field("envelope", value.Bytes([]byte("envelope-"+strconv.Itoa(i)))),
			value.Field("timestamp", value.Int(1700000000000+int64(i))),
			value.Field("attempts", value.Int(0)),
		)
		if err := s.SaveUnprocessed(rec); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < m; i++ {
		if err := s.RemoveUnprocessed(strconv.Itoa(i)); err != nil {
			t.Fatal(err)
		}
	}

	count, err := s.GetUnprocessedCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != n-m {
		t.Errorf("count: got %d, want %d", count, n-m)
	}
	all, err := s.GetAllUnprocessed()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != n-m {
		t.Errorf("GetAllUnprocessed: got %d, want %d", len(all), n-m)
	}

	if err := s.RemoveAllUnprocessed(); err != nil {
		t.Fatal(err)
	}
	if count, _ := s.GetUnprocessedCount(); count != 0 {
		t.Errorf("count after wipe: got %d, want 0", count)
	}
}

func TestUpdateUnprocessedAttempts(t *testing.T) {
	s := tempStore(t)

	if err := s.SaveUnprocessed(value.Map(
		value.Field("id", value.String("7")),
		value.Field("envelope", value.String("abc")),
		value.Field("attempts", value.Int(1)),
	)); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateUnprocessedAttempts("7", 3); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.GetUnprocessedByID("7")
	if err != nil || !ok {
		t.Fatalf("GetUnprocessedByID: ok=%v err=%v", ok, err)
	}
	want := value.Map(
		value.Field("id", value.String("7")),
		value.Field("envelope", value.String("abc")),
		value.Field("attempts", value.Int(3)),
	)
	if !value.Equal(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	err = s.UpdateUnprocessedAttempts("missing", 1)
	if !errors.Is(err, kv.ErrRecordNotFound) {
		t.Fatalf("missing: got %v, want ErrRecordNotFound", err)
	}
	if _, ok, _ := s.GetUnprocessedByID("missing"); ok {
		t.Error("update of a missing envelope must not create it")
	}
}

func TestUpdateUnprocessedWithData(t *testing.T) {
	s := memStore(t)

	if err := s.SaveUnprocessed(value.Map(
		value.Field("id", value.String("9")),
		value.Field("envelope", value.String("sealed")),
	)); err != nil {
		t.Fatal(err)
	}

	// data without id gets it from the argument
	if err := s.UpdateUnprocessedWithData("9", value.Map(
		value.Field("decrypted", value.String("hello")),
	)); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.GetUnprocessedByID("9")
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := got.Get("decrypted"); !value.Equal(d, value.String("hello")) {
		t.Errorf("decrypted: got %#v", d)
	}
	if _, ok := got.Get("envelope"); ok {
		t.Error("data replaces the envelope wholesale")
	}

	err = s.UpdateUnprocessedWithData("9", value.Map(value.Field("id", value.String("10"))))
	if !errors.Is(err, value.ErrUnsupportedValueType) {
		t.Fatalf("mismatched id: got %v, want ErrUnsupportedValueType", err)
	}
}

func TestGroups(t *testing.T) {
	s := tempStore(t)

	for _, rec := range []value.Value{
		value.Map(
			value.Field("id", value.String("group-a")),
			value.Field("numbers", value.List(value.String("+1"), value.String("+2"))),
		),
		value.Map(
			value.Field("id", value.Int(12)),
			value.Field("numbers", value.List()),
		),
	} {
		if err := s.CreateOrUpdateGroup(rec); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := s.GetAllGroupIDs()
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	var sawNumber bool
	for _, id := range ids {
		txt, _ := id.Text()
		texts = append(texts, txt)
		if id.Kind() == value.KindNumber {
			sawNumber = true
		}
	}
	sort.Strings(texts)
	if len(texts) != 2 || texts[0] != "12" || texts[1] != "group-a" {
		t.Errorf("ids: got %v", texts)
	}
	if !sawNumber {
		t.Error("numeric group id should come back as a number")
	}

	g, ok, err := s.GetGroupByID("group-a")
	if err != nil || !ok {
		t.Fatalf("GetGroupByID: ok=%v err=%v", ok, err)
	}
	if nums, _ := g.Get("numbers"); nums.Len() != 2 {
		t.Errorf("numbers: got %#v", nums)
	}

	if err := s.RemoveGroupByID("12"); err != nil {
		t.Fatal(err)
	}
	if all, _ := s.GetAllGroups(); len(all) != 1 {
		t.Errorf("groups: got %d, want 1", len(all))
	}
	if err := s.RemoveAllGroups(); err != nil {
		t.Fatal(err)
	}
	if ids, _ := s.GetAllGroupIDs(); len(ids) != 0 {
		t.Errorf("group ids after wipe: got %d", len(ids))
	}
}

func TestConfiguration(t *testing.T) {
	s := memStore(t)

	if err := s.CreateOrUpdateConfiguration(value.Map(
		value.Field("id", value.String("readReceipts")),
		value.Field("value", value.Bool(true)),
	)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.GetConfigurationByID("readReceipts")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if v, _ := got.Get("value"); !value.Equal(v, value.Bool(true)) {
		t.Errorf("value: got %#v", v)
	}
	if err := s.RemoveConfigurationByID("readReceipts"); err != nil {
		t.Fatal(err)
	}
	if all, _ := s.GetAllConfiguration(); len(all) != 0 {
		t.Errorf("configuration: got %d, want 0", len(all))
	}
	if err := s.RemoveAllConfiguration(); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveAll(t *testing.T) {
	s := tempStore(t)

	if err := s.CreateOrUpdateSession(session("1", "+1", 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateOrUpdateGroup(value.Map(value.Field("id", value.String("g")))); err != nil {
		t.Fatal(err)
	}
	// Namespaces unknown to the store are wiped too.
	if err := s.KV().Put("custom", "k", value.Map(value.Field("id", value.String("k")))); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveAll(); err != nil {
		t.Fatal(err)
	}
	nss, err := s.KV().Namespaces()
	if err != nil {
		t.Fatal(err)
	}
	if len(nss) != 0 {
		t.Errorf("namespaces after RemoveAll: %v", nss)
	}
}

func TestStats(t *testing.T) {
	s := memStore(t)

	for i := 0; i < 3; i++ {
		if err := s.CreateOrUpdatePreKey(value.Map(value.Field("id", value.Int(int64(i))))); err != nil {
			t.Fatal(err)
		}
	}
	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats[NamespacePreKey] != 3 {
		t.Errorf("prekeys: got %d, want 3", stats[NamespacePreKey])
	}
	if len(stats) != len(Namespaces) {
		t.Errorf("stats namespaces: got %d, want %d", len(stats), len(Namespaces))
	}
	if stats[NamespaceSession] != 0 {
		t.Errorf("sessions: got %d, want 0", stats[NamespaceSession])
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateOrUpdateSession(session("+1.2", "+1", 2)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok, err := s.GetSessionByID("+1.2"); err != nil || !ok {
		t.Fatalf("session should persist across reopen: ok=%v err=%v", ok, err)
	}
}

func TestSealedStore(t *testing.T) {
	dir := t.TempDir()
	dsn := "bolt://" + filepath.Join(dir, "sealed.bolt")

	s, err := Open(dsn, WithPassphrase("correct horse"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateOrUpdateIdentityKey(value.Map(
		value.Field("id", value.String("+1")),
		value.Field("publicKey", value.Bytes([]byte{5, 1, 2})),
	)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := Open(dsn, WithPassphrase("wrong")); !errors.Is(err, kv.ErrWrongPassphrase) {
		t.Fatalf("wrong passphrase: got %v, want ErrWrongPassphrase", err)
	}

	s, err = Open(dsn, WithPassphrase("correct horse"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok, err := s.GetIdentityKeyByID("+1"); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	// The seal namespace is not visible through the store.
	nss, err := s.KV().Namespaces()
	if err != nil {
		t.Fatal(err)
	}
	if len(nss) != 1 || nss[0] != NamespaceIdentityKey {
		t.Errorf("namespaces: got %v", nss)
	}
}

func TestAccountSaveLoad(t *testing.T) {
	s := tempStore(t)

	// Loading with no account returns nil.
	acct, err := s.LoadAccount()
	if err != nil {
		t.Fatal(err)
	}
	if acct != nil {
		t.Fatal("expected nil account")
	}

	want := &Account{
		Number:                "+15551234567",
		ACI:                   "aci-uuid",
		PNI:                   "pni-uuid",
		Password:              "secret",
		DeviceID:              2,
		RegistrationID:        12345,
		PNIRegistrationID:     67890,
		ACIIdentityKeyPrivate: []byte{0x01, 0x02, 0x03},
		ACIIdentityKeyPublic:  []byte{0x05, 0xff, 0x80},
		PNIIdentityKeyPrivate: []byte{0x07, 0x08},
		PNIIdentityKeyPublic:  []byte{0x09, 0x00},
		ProfileKey:            bytes.Repeat([]byte{0xaa}, 32),
		MasterKey:             bytes.Repeat([]byte{0xbb}, 32),
	}
	if err := s.SaveAccount(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadAccount()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected account")
	}
	if got.Number != want.Number || got.ACI != want.ACI || got.PNI != want.PNI || got.Password != want.Password {
		t.Errorf("identity fields: got %+v", got)
	}
	if got.DeviceID != 2 || got.RegistrationID != 12345 || got.PNIRegistrationID != 67890 {
		t.Errorf("ids: got %d %d %d", got.DeviceID, got.RegistrationID, got.PNIRegistrationID)
	}
	for name, pair := range map[string][2][]byte{
		"aciPriv":    {got.ACIIdentityKeyPrivate, want.ACIIdentityKeyPrivate},
		"aciPub":     {got.ACIIdentityKeyPublic, want.ACIIdentityKeyPublic},
		"pniPriv":    {got.PNIIdentityKeyPrivate, want.PNIIdentityKeyPrivate},
		"pniPub":     {got.PNIIdentityKeyPublic, want.PNIIdentityKeyPublic},
		"profileKey": {got.ProfileKey, want.ProfileKey},
		"masterKey":  {got.MasterKey, want.MasterKey},
	} {
		if !bytes.Equal(pair[0], pair[1]) {
			t.Errorf("%s: got %x, want %x", name, pair[0], pair[1])
		}
	}

	// The account is an ordinary configuration record.
	if _, ok, _ := s.GetConfigurationByID("account"); !ok {
		t.Error("account should be stored in the configuration namespace")
	}
}

func TestLoadAccountMalformed(t *testing.T) {
	s := memStore(t)

	if err := s.CreateOrUpdateConfiguration(value.Map(
		value.Field("id", value.String("account")),
		value.Field("deviceId", value.String("two")),
	)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadAccount(); !errors.Is(err, value.ErrMalformedRecord) {
		t.Fatalf("got %v, want ErrMalformedRecord", err)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	if got := DefaultDataDir(); got != "/tmp/xdg/signal-store" {
		t.Errorf("got %q", got)
	}
}

func TestAccountDir(t *testing.T) {
	got, err := AccountDir("/data", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/data/default" {
		t.Errorf("got %q, want /data/default", got)
	}
	if got, _ := AccountDir("/data", "+15551234567"); got != "/data/+15551234567" {
		t.Errorf("got %q", got)
	}
	for _, bad := range []string{"..", ".", "a/b", `a\b`} {
		if _, err := AccountDir("/data", bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestConcurrentWritersAcrossNamespaces(t *testing.T) {
	s := tempStore(t)

	const writers, writes = 4, 25
	var wg sync.WaitGroup
	errs := make(chan error, len(Namespaces)*writers*writes)
	for _, ns := range Namespaces {
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < writes; i++ {
					id := strconv.Itoa(w*writes + i)
					if err := s.createOrUpdate(ns, value.Map(value.Field("id", value.String(id)))); err != nil {
						errs <- err
					}
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	for _, ns := range Namespaces {
		if stats[ns] != writers*writes {
			t.Errorf("%s: got %d records, want %d", ns, stats[ns], writers*writes)
		}
	}
}
