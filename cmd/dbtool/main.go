package main

import (
	"context"
	"delivery-eta-service/internal/adapters/artifacts"
	"delivery-eta-service/internal/config"
	"delivery-eta-service/internal/platform/logging"
	"delivery-eta-service/internal/services"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
)

// dbtool publishes locally trained artifacts into the configured
// postgres, sqlite or redis store, creating the artifacts table if needed.
func main() {
	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	from := flag.String("from", cfg.ArtifactsDir, "directory holding the trained artifacts")
	flag.Parse()

	log := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *from, log); err != nil {
		log.Error("publish failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, from string, log *slog.Logger) error {
	if cfg.Store == config.StoreFile {
		return errors.New("store is file: set ETA_STORE to postgres, sqlite or redis")
	}

	store, closeStore, err := artifacts.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	log.Info("publishing artifacts", "from", from, "store", cfg.Store)
	names := []string{services.PreprocessorArtifact, services.ModelArtifact}
	if err := artifacts.SeedFromDir(ctx, store, from, names...); err != nil {
		return fmt.Errorf("publish to %s: %w", cfg.Store, err)
	}
	for _, name := range names {
		log.Info("artifact published", "artifact", name, "location", store.Location(name))
	}
	return nil
}
