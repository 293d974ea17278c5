package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace TEXT NOT NULL,
	id TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (namespace, id)
);
`

// SQLiteMedium stores keys in a single SQLite table.
type SQLiteMedium struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite medium at path, creating parent
// directories as needed.
func OpenSQLite(path string) (*SQLiteMedium, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, ioError("create dir", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ioError("open db", err)
	}

	// Writers to different namespaces share the database file.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, ioError("configure", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, ioError("create schema", err)
	}

	return &SQLiteMedium{db: db}, nil
}

func (m *SQLiteMedium) Put(key Key, text string) error {
	_, err := m.db.Exec(
		"INSERT OR REPLACE INTO kv (namespace, id, value) VALUES (?, ?, ?)",
		key.Namespace, key.ID, text,
	)
	if err != nil {
		return ioError("sqlite put", err)
	}
	return nil
}

func (m *SQLiteMedium) Get(key Key) (string, bool, error) {
	var text string
	err := m.db.QueryRow(
		"SELECT value FROM kv WHERE namespace = ? AND id = ?",
		key.Namespace, key.ID,
	).Scan(&text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, ioError("sqlite get", err)
	}
	return text, true, nil
}

func (m *SQLiteMedium) Remove(key Key) error {
	_, err := m.db.Exec(
		"DELETE FROM kv WHERE namespace = ? AND id = ?",
		key.Namespace, key.ID,
	)
	if err != nil {
		return ioError("sqlite remove", err)
	}
	return nil
}

func (m *SQLiteMedium) Keys() ([]Key, error) {
	rows, err := m.db.Query("SELECT namespace, id FROM kv")
	if err != nil {
		return nil, ioError("sqlite keys", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Namespace, &k.ID); err != nil {
			return nil, ioError("sqlite scan key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, ioError("sqlite iterate keys", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (m *SQLiteMedium) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("kv: close sqlite: %w", err)
	}
	return nil
}
