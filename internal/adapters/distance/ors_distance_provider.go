package distance

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ORSDistanceProvider implements DistanceProvider using the OpenRouteService
// matrix endpoint, which returns road distance rather than straight-line
// distance. The provider is safe for concurrent use.
type ORSDistanceProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	log     *slog.Logger
}

func NewORSDistanceProvider(apiKey string, log *slog.Logger) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSDistanceProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		log:     log,
	}, nil
}

// WithBaseURL points the provider at another ORS-compatible server.
func (o *ORSDistanceProvider) WithBaseURL(u string) *ORSDistanceProvider {
	o.baseURL = u
	return o
}

// WithProfile selects the ORS routing profile, e.g. "cycling-electric".
func (o *ORSDistanceProvider) WithProfile(p string) *ORSDistanceProvider {
	o.profile = p
	return o
}

func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, o.log, "ors.GetDistance")(&err)

	if err := origin.Validate(); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance: origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance: destination: %w", err)
	}

	results, err := o.fetchMatrixRow(ctx, origin, []domain.Coordinates{destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance: %w", err)
	}
	return results[0], nil
}
