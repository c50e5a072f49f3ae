package handlers

import (
	"context"
	"delivery-eta-service/internal/api/dto"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/services"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Predictor estimates delivery time in minutes for one trip.
type Predictor interface {
	PredictRecord(ctx context.Context, req services.PredictRequest) (float64, error)
}

type PredictHandler struct {
	Predictor Predictor
	Log       *slog.Logger
}

type formPage struct {
	Error   string
	Choices []domain.Vocabulary
}

type resultPage struct {
	Error  string
	Result float64
}

func Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	render(w, http.StatusOK, "index.html", nil)
}

// Form serves the prediction form on GET and the result page on POST.
func (h *PredictHandler) Form(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		render(w, http.StatusOK, "form.html", formPage{Choices: domain.Vocabularies()})
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PredictHandler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, http.StatusBadRequest, "results.html", resultPage{Error: "invalid form"})
		return
	}

	fields := make(map[string]string, len(domain.FeatureColumns()))
	for _, col := range domain.FeatureColumns() {
		fields[col] = r.PostForm.Get(col)
	}

	pickup, dropoff, err := formRoute(r)
	if err != nil {
		render(w, http.StatusBadRequest, "results.html", resultPage{Error: err.Error()})
		return
	}

	rec, err := domain.ParseRecord(fields, pickup != nil)
	if err != nil {
		render(w, http.StatusBadRequest, "results.html", resultPage{Error: err.Error()})
		return
	}

	pred, err := h.Predictor.PredictRecord(r.Context(), services.PredictRequest{Record: rec, Pickup: pickup, Dropoff: dropoff})
	if err != nil {
		status, msg := statusFor(err)
		h.Log.Error("form prediction failed", "status", status, "err", err)
		render(w, status, "results.html", resultPage{Error: msg})
		return
	}

	render(w, http.StatusOK, "results.html", resultPage{Result: round2(pred)})
}

// API is the JSON variant of the form submission.
func (h *PredictHandler) API(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(h.Log, w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PredictRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(h.Log, w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	rec, err := domain.ParseRecord(req.Fields(), req.HasRoute())
	if err != nil {
		writeErrorCode(h.Log, w, r, http.StatusBadRequest, fieldErrorCode(err), err.Error())
		return
	}

	svcReq := services.PredictRequest{Record: rec}
	if req.HasRoute() {
		svcReq.Pickup = req.Pickup.Coordinates()
		svcReq.Dropoff = req.Dropoff.Coordinates()
	}

	pred, err := h.Predictor.PredictRecord(r.Context(), svcReq)
	if err != nil {
		status, msg := statusFor(err)
		h.Log.Error("api prediction failed", "status", status, "err", err)
		writeError(h.Log, w, r, status, msg)
		return
	}

	writeJSON(h.Log, w, r, http.StatusOK, dto.PredictResponse{PredictionMinutes: round2(pred)})
}

// formRoute reads the optional pickup/dropoff coordinates. Either all four
// are given or none.
func formRoute(r *http.Request) (*domain.Coordinates, *domain.Coordinates, error) {
	names := []string{"pickup_lat", "pickup_lon", "dropoff_lat", "dropoff_lon"}

	var vals [4]float64
	given := 0
	for i, n := range names {
		s := strings.TrimSpace(r.PostForm.Get(n))
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %q is not a number", n, s)
		}
		vals[i] = v
		given++
	}

	switch given {
	case 0:
		return nil, nil, nil
	case len(names):
		return &domain.Coordinates{Lat: vals[0], Lon: vals[1]}, &domain.Coordinates{Lat: vals[2], Lon: vals[3]}, nil
	default:
		return nil, nil, errors.New("pickup and dropoff need both latitude and longitude")
	}
}

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pages.ExecuteTemplate(w, name, data)
}
