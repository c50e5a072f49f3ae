package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// ArtifactChecker loads and decodes every artifact a prediction needs and
// reports the ones that failed, keyed by artifact name.
type ArtifactChecker interface {
	Check(ctx context.Context) map[string]error
}

type HealthHandler struct {
	Checker ArtifactChecker
	Log     *slog.Logger
}

// Health provides a minimal liveness check endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(h.Log, w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(h.Log, w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports 503 until every required artifact loads and decodes.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(h.Log, w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{"status": "ok"}
	status := http.StatusOK
	for name, err := range h.Checker.Check(r.Context()) {
		h.Log.Warn("artifact not usable", "artifact", name, "err", err)
		res[name] = "unavailable"
		res["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(h.Log, w, r, status, res)
}
