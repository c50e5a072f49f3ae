package distance

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/ports"
	"fmt"
	"math"
)

// matrixRequest asks for a single source row: location 0 to every other.
type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
}

func newMatrixRequest(origin domain.Coordinates, destinations []domain.Coordinates) matrixRequest {
	req := matrixRequest{
		Locations:    [][]float64{origin.CoordsToList()},
		Sources:      []int{0},
		Destinations: make([]int, len(destinations)),
		Metrics:      []string{"distance", "duration"},
	}
	for i, c := range destinations {
		req.Locations = append(req.Locations, c.CoordsToList())
		req.Destinations[i] = i + 1
	}
	return req
}

// Unroutable pairs come back as null cells.
type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// row converts the single source row into n results.
func (mr matrixResponse) row(n int) ([]ports.DistanceResult, error) {
	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return nil, fmt.Errorf("want 1 source row, got %d distance and %d duration rows", len(mr.Distances), len(mr.Durations))
	}

	dist, dur := mr.Distances[0], mr.Durations[0]
	if len(dist) != n || len(dur) != n {
		return nil, fmt.Errorf("want %d cells per row, got %d distances and %d durations", n, len(dist), len(dur))
	}

	out := make([]ports.DistanceResult, n)
	for i := range out {
		if dist[i] == nil || dur[i] == nil {
			return nil, fmt.Errorf("no route to destination %d", i)
		}
		out[i] = ports.DistanceResult{
			DistanceMeters:  int(math.Round(*dist[i])),
			DurationSeconds: int(math.Round(*dur[i])),
		}
	}
	return out, nil
}

// fetchMatrixRow looks up distance and duration from origin to each
// destination, in destination order.
func (o *ORSDistanceProvider) fetchMatrixRow(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]ports.DistanceResult, error) {
	if len(destinations) == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	var mr matrixResponse
	if err := o.postJSON(ctx, endpoint, newMatrixRequest(origin, destinations), &mr); err != nil {
		return nil, fmt.Errorf("matrix request: %w", err)
	}
	return mr.row(len(destinations))
}
