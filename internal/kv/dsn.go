package kv

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidDSN is returned for DSNs that do not name a usable medium.
var ErrInvalidDSN = errors.New("invalid medium DSN")

// OpenDSN opens the medium named by dsn:
//
//	sqlite:///var/lib/signal/store.db   (also a bare path)
//	bolt:///var/lib/signal/store.bolt
//	dir:///var/lib/signal/store
//	memory:
func OpenDSN(dsn string) (Medium, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDSN)
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}

	scheme := strings.ToLower(strings.TrimSpace(parsed.Scheme))
	switch scheme {
	case "memory", "mem", "inmem":
		return NewMemoryMedium(), nil
	}

	path, err := dsnPath(parsed, dsn)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case "", "file", "sqlite":
		return OpenSQLite(path)
	case "bolt", "bbolt":
		return OpenBolt(path)
	case "dir":
		return OpenDir(path)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidDSN, scheme)
	}
}

func dsnPath(parsed *url.URL, raw string) (string, error) {
	if strings.TrimSpace(parsed.Scheme) == "" {
		return strings.TrimSpace(raw), nil
	}
	if parsed.Opaque != "" {
		path, err := url.PathUnescape(parsed.Opaque)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidDSN, err)
		}
		return path, nil
	}
	path := parsed.Host + parsed.Path
	if path == "" {
		return "", fmt.Errorf("%w: %q has no path", ErrInvalidDSN, raw)
	}
	return path, nil
}

// FileDSN returns the DSN of a file-backed medium at path. The path is made
// absolute and escaped, so '?', '#' and '%' survive OpenDSN.
func FileDSN(scheme, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	u := url.URL{Scheme: scheme, Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
