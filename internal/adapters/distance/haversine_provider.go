package distance

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/ports"
	"fmt"
	"math"
)

// HaversineProvider estimates distance as the great-circle distance between
// the two points and duration from a fixed average speed.
type HaversineProvider struct {
	AvgSpeedKMH float64
}

func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{AvgSpeedKMH: 25}
}

func (h *HaversineProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	if err := origin.Validate(); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("haversine distance: origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("haversine distance: destination: %w", err)
	}

	km := origin.HaversineKM(destination)

	seconds := 0
	if h.AvgSpeedKMH > 0 {
		seconds = int(math.Round(km / h.AvgSpeedKMH * 3600))
	}

	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(km * 1000)),
		DurationSeconds: seconds,
	}, nil
}
