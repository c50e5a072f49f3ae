package main

import (
	"context"
	"delivery-eta-service/internal/adapters/artifacts"
	"delivery-eta-service/internal/adapters/distance"
	"delivery-eta-service/internal/api"
	"delivery-eta-service/internal/config"
	"delivery-eta-service/internal/platform/logging"
	"delivery-eta-service/internal/platform/metrics"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/services"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires the configured artifact store and distance provider behind ports
// and starts the HTTP server.
func main() {
	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := artifacts.Open(ctx, cfg, log)
	if err != nil {
		log.Error("open artifact store", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	provider, err := distanceProvider(cfg, log)
	if err != nil {
		log.Error("distance provider", "err", err)
		os.Exit(1)
	}

	m := metrics.New()
	predictor := services.NewPredictPipeline(store, provider, log, m)
	router := api.NewRouter(api.Deps{Predictor: predictor, Checker: predictor, Metrics: m, Log: log})

	// Write timeout leaves room for a road distance lookup with retries.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "err", err)
		}
	}()

	log.Info("Server listening", "addr", srv.Addr, "store", cfg.Store, "preprocessor", store.Location(services.PreprocessorArtifact))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// distanceProvider uses OpenRouteService road distances when an API key is
// configured and great-circle estimates otherwise.
func distanceProvider(cfg *config.Config, log *slog.Logger) (ports.DistanceProvider, error) {
	if strings.TrimSpace(cfg.ORSAPIKey) == "" {
		log.Info("ORS api key not set, using haversine distances")
		return distance.NewHaversineProvider(), nil
	}
	ors, err := distance.NewORSDistanceProvider(cfg.ORSAPIKey, log)
	if err != nil {
		return nil, err
	}
	log.Info("using ORS road distances", "profile", cfg.ORSProfile)
	return ors.WithProfile(cfg.ORSProfile), nil
}
