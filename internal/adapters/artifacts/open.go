package artifacts

import (
	"context"
	"database/sql"
	"delivery-eta-service/internal/config"
	"delivery-eta-service/internal/platform/db"
	"delivery-eta-service/internal/ports"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Open builds the artifact store selected by cfg.Store. The returned close
// func releases the backing connection, if any.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.ArtifactStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreFile:
		return NewFileArtifactStore(cfg.ArtifactsDir), noop, nil

	case config.StorePostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open artifact store: %w", err)
		}
		if err := initOrClose(conn, Postgres); err != nil {
			return nil, nil, err
		}
		return NewSQLArtifactStore(conn, log), conn.Close, nil

	case config.StoreSqlite:
		conn, err := db.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open artifact store: %w", err)
		}
		if err := initOrClose(conn, Sqlite); err != nil {
			return nil, nil, err
		}
		return NewSqliteArtifactStore(conn), conn.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("open artifact store: ping redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisArtifactStore(client, cfg.RedisPrefix), client.Close, nil
	}

	return nil, nil, fmt.Errorf("open artifact store: unknown store %q", cfg.Store)
}

func initOrClose(conn *sql.DB, dialect Dialect) error {
	if err := InitSchema(conn, dialect); err != nil {
		conn.Close()
		return fmt.Errorf("open artifact store: %w", err)
	}
	return nil
}
