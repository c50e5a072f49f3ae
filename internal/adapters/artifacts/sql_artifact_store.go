package artifacts

import (
	"context"
	"database/sql"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"log/slog"
)

// SQLArtifactStore is a Postgres-backed artifact store (pgx stdlib driver).
type SQLArtifactStore struct {
	DB  *sql.DB
	Log *slog.Logger
}

func NewSQLArtifactStore(db *sql.DB, log *slog.Logger) *SQLArtifactStore {
	return &SQLArtifactStore{DB: db, Log: log}
}

func (s *SQLArtifactStore) Location(name string) string {
	return "postgres:artifacts/" + name
}

// Insert or replace an artifact.
func (s *SQLArtifactStore) Save(ctx context.Context, name string, data []byte) (err error) {
	defer obs.Time(ctx, s.Log, "artifacts.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("artifact store: db is nil")
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	q := `
	INSERT INTO artifacts (name, data, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (name) DO UPDATE
	SET data = EXCLUDED.data,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, name, data); err != nil {
		return fmt.Errorf("save artifact %q: %w", name, err)
	}
	return nil
}

func (s *SQLArtifactStore) Load(ctx context.Context, name string) (_ []byte, err error) {
	defer obs.Time(ctx, s.Log, "artifacts.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("artifact store: db is nil")
	}
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}

	q := `
	SELECT data
	FROM artifacts
	WHERE name = $1;
	`
	var data []byte
	err = s.DB.QueryRowContext(ctx, q, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load artifact %q: %w", name, ports.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", name, err)
	}
	return data, nil
}
