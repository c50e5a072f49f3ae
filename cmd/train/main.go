package main

import (
	"context"
	"delivery-eta-service/internal/adapters/artifacts"
	"delivery-eta-service/internal/config"
	"delivery-eta-service/internal/platform/logging"
	"delivery-eta-service/internal/services"
	"flag"
	"log/slog"
	"os"
	"os/signal"
)

// train runs ingestion, preprocessing and model fitting, then stores the
// fitted preprocessor and model in the configured artifact store.
func main() {
	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	raw := flag.String("data", cfg.RawDataPath, "raw delivery CSV")
	out := flag.String("out", cfg.ArtifactsDir, "directory for raw/train/test tables")
	flag.Parse()

	log := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeStore, err := artifacts.Open(ctx, cfg, log)
	if err != nil {
		log.Error("open artifact store", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	p := &services.TrainingPipeline{
		Ingestion: &services.Ingestion{
			RawPath:   *raw,
			Dir:       *out,
			TestRatio: cfg.TestRatio,
			Seed:      cfg.Seed,
			Log:       log,
		},
		Store: store,
		Log:   log,
	}

	rep, err := p.Run(ctx)
	if err != nil {
		log.Error("training failed", "err", err)
		closeStore()
		os.Exit(1)
	}

	log.Info("training complete",
		"train_rows", rep.Ingestion.TrainRows,
		"test_rows", rep.Ingestion.TestRows,
		"preprocessor", rep.PreprocessorAt,
		"model", rep.Model.Location,
		"test_r2", rep.Model.Test.R2,
		"test_rmse", rep.Model.Test.RMSE,
	)
}
