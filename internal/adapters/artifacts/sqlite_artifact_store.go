package artifacts

import (
	"context"
	"database/sql"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
)

// SQLite backed artifact store.
type SqliteArtifactStore struct {
	DB *sql.DB
}

func NewSqliteArtifactStore(db *sql.DB) *SqliteArtifactStore {
	return &SqliteArtifactStore{DB: db}
}

func (s *SqliteArtifactStore) Location(name string) string {
	return "sqlite:artifacts/" + name
}

// Insert or replace an artifact.
func (s *SqliteArtifactStore) Save(ctx context.Context, name string, data []byte) error {
	if s.DB == nil {
		return errors.New("artifact store: db is nil")
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	q := `
	INSERT OR REPLACE INTO artifacts (
		name,
		data,
		updated_at
	)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.DB.ExecContext(ctx, q, name, data); err != nil {
		return fmt.Errorf("save artifact %q: %w", name, err)
	}
	return nil
}

func (s *SqliteArtifactStore) Load(ctx context.Context, name string) ([]byte, error) {
	if s.DB == nil {
		return nil, errors.New("artifact store: db is nil")
	}
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}

	q := `
	SELECT data
	FROM artifacts
	WHERE name = ?;
	`
	var data []byte
	err := s.DB.QueryRowContext(ctx, q, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load artifact %q: %w", name, ports.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", name, err)
	}
	return data, nil
}
