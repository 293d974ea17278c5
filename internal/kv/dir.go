package kv

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DirMedium keeps one file per key below a root directory:
// <root>/<hex(namespace)>/<hex(id)>. Hex names keep arbitrary namespaces and
// ids filesystem-safe, so ids are limited to half the filesystem's name
// length.
type DirMedium struct {
	fs   afero.Fs
	root string
}

// OpenDir opens a directory medium on the OS filesystem.
func OpenDir(root string) (*DirMedium, error) {
	return NewDirMedium(afero.NewOsFs(), root)
}

// NewDirMedium opens a directory medium on fs, creating root if needed.
func NewDirMedium(fs afero.Fs, root string) (*DirMedium, error) {
	if err := fs.MkdirAll(root, 0o700); err != nil {
		return nil, ioError("create dir", err)
	}
	return &DirMedium{fs: fs, root: root}, nil
}

func (m *DirMedium) dir(ns string) string {
	return filepath.Join(m.root, hex.EncodeToString([]byte(ns)))
}

func (m *DirMedium) path(key Key) string {
	return filepath.Join(m.dir(key.Namespace), hex.EncodeToString([]byte(key.ID)))
}

// Put writes via a temp file then renames it over the target.
func (m *DirMedium) Put(key Key, text string) error {
	dir := m.dir(key.Namespace)
	if err := m.fs.MkdirAll(dir, 0o700); err != nil {
		return ioError("dir put", err)
	}

	f, err := afero.TempFile(m.fs, dir, ".tmp-*")
	if err != nil {
		return ioError("dir put", err)
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = m.fs.Remove(tmp) }()

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return ioError("dir put", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return ioError("dir put", err)
	}
	if err := f.Close(); err != nil {
		return ioError("dir put", err)
	}
	if err := m.fs.Rename(tmp, m.path(key)); err != nil {
		return ioError("dir put", err)
	}
	return nil
}

func (m *DirMedium) Get(key Key) (string, bool, error) {
	b, err := afero.ReadFile(m.fs, m.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ioError("dir get", err)
	}
	return string(b), true, nil
}

func (m *DirMedium) Remove(key Key) error {
	err := m.fs.Remove(m.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ioError("dir remove", err)
	}
	return nil
}

// Keys walks the two directory levels. Entries whose names are not hex, such
// as leftover temp files, are skipped.
func (m *DirMedium) Keys() ([]Key, error) {
	namespaces, err := afero.ReadDir(m.fs, m.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioError("dir keys", err)
	}

	var keys []Key
	for _, nsEntry := range namespaces {
		if !nsEntry.IsDir() {
			continue
		}
		ns, err := hex.DecodeString(nsEntry.Name())
		if err != nil {
			continue
		}
		files, err := afero.ReadDir(m.fs, filepath.Join(m.root, nsEntry.Name()))
		if err != nil {
			return nil, ioError("dir keys", err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			id, err := hex.DecodeString(f.Name())
			if err != nil {
				continue
			}
			keys = append(keys, Key{Namespace: string(ns), ID: string(id)})
		}
	}
	return keys, nil
}

func (m *DirMedium) Close() error { return nil }
