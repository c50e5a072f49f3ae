package handlers

import (
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/ports"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
)

func writeJSON(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(log, w, r, status, map[string]string{"error": msg})
}

func writeErrorCode(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(log, w, r, status, map[string]string{"error": msg, "code": code})
}

// fieldErrorCode tells an absent feature apart from one that failed to parse.
func fieldErrorCode(err error) string {
	if domain.IsMissingField(err) {
		return "missing_field"
	}
	return "invalid_field"
}

// statusFor maps an application error to an HTTP status and a message that
// is safe to show to the caller.
func statusFor(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindInput, apperr.KindDataShape:
		return http.StatusBadRequest, cause(err).Error()
	case apperr.KindStorage:
		if errors.Is(err, ports.ErrArtifactNotFound) {
			return http.StatusServiceUnavailable, "model is not trained yet"
		}
	case apperr.KindUpstream:
		return http.StatusBadGateway, "distance service unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}

// cause returns the error wrapped by the innermost *apperr.Error.
func cause(err error) error {
	for {
		var e *apperr.Error
		if !errors.As(err, &e) || e.Err == nil {
			return err
		}
		err = e.Err
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
