package api

import (
	"delivery-eta-service/internal/api/handlers"
	"delivery-eta-service/internal/platform/metrics"
	"log/slog"
	"net/http"
)

type Deps struct {
	Predictor handlers.Predictor
	Checker   handlers.ArtifactChecker
	Metrics   *metrics.Metrics
	Log       *slog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	mux := http.NewServeMux()

	predict := &handlers.PredictHandler{Predictor: d.Predictor, Log: d.Log}
	health := &handlers.HealthHandler{Checker: d.Checker, Log: d.Log}

	mux.HandleFunc("/{$}", handlers.Home)
	mux.HandleFunc("/predict", predict.Form)
	mux.HandleFunc("/api/predict", predict.API)
	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/ready", health.Ready)
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	return requestMiddleware(d.Log, d.Metrics, mux)
}
