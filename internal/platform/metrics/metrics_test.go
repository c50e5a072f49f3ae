package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPredictionsCounter(t *testing.T) {
	m := New()
	m.Predictions.WithLabelValues("ok").Inc()
	m.Predictions.WithLabelValues("ok").Inc()
	m.Predictions.WithLabelValues("input_error").Inc()

	if got := testutil.ToFloat64(m.Predictions.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok predictions = %v, want 2", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `eta_http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", body)
	}
}
