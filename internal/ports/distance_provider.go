package ports

import (
	"context"
	"delivery-eta-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// KM returns the distance in kilometers.
func (r DistanceResult) KM() float64 { return float64(r.DistanceMeters) / 1000 }

// Contract for retrieving travel distance between a pickup and a drop-off point.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two locations.
	GetDistance(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}
