package artifacts

import (
	"context"
	"database/sql"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dialect selects SQL syntax for the artifacts table.
type Dialect string

const (
	Postgres Dialect = "postgres"
	Sqlite   Dialect = "sqlite"
)

// Initialize the artifacts table.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	var createArtifactsQuery string
	switch dialect {
	case Postgres:
		createArtifactsQuery = `
	CREATE TABLE IF NOT EXISTS artifacts (
		name TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	case Sqlite:
		createArtifactsQuery = `
	CREATE TABLE IF NOT EXISTS artifacts (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	default:
		return fmt.Errorf("init schema: unknown dialect %q", dialect)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(createArtifactsQuery); err != nil {
		return fmt.Errorf("init schema: create artifacts table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromDir copies the named artifacts from a directory of files into dst.
// Missing files are an error; nothing is partially published per artifact.
func SeedFromDir(ctx context.Context, dst ports.ArtifactStore, dir string, names ...string) error {
	if len(names) == 0 {
		return errors.New("seed artifacts: no artifact names given")
	}
	if err := statDir(dir); err != nil {
		return fmt.Errorf("seed artifacts: %w", err)
	}

	src := NewFileArtifactStore(dir)
	for _, name := range names {
		data, err := src.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("seed artifacts: read %q: %w", filepath.Join(dir, name), err)
		}
		if len(data) == 0 {
			return fmt.Errorf("seed artifacts: %q is empty", filepath.Join(dir, name))
		}
		if err := dst.Save(ctx, name, data); err != nil {
			return fmt.Errorf("seed artifacts: publish %q: %w", name, err)
		}
	}
	return nil
}

// statDir fails early with a readable error when dir does not exist.
func statDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	return nil
}
