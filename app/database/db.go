package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the release journal, a local SQLite file.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens the journal at path and migrates it.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	db := &DB{DB: conn, path: path}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("Release journal ready", "path", path, "schema_version", version, "dirty", dirty)

	return db, nil
}

func (db *DB) Path() string {
	return db.path
}
