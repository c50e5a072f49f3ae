package distance

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/ports"
	"fmt"
	"sync"
	"time"
)

// MockPair is one directed entry of a mock distance table.
type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

type routeKey struct{ from, to domain.Coordinates }

// MockDistanceProvider answers from a fixed table, counts calls and can be
// told to fail or to take Delay per call. Safe for concurrent use.
type MockDistanceProvider struct {
	mu     sync.Mutex
	routes map[routeKey]ports.DistanceResult
	Calls  int
	Err    error
	Delay  time.Duration
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	routes := make(map[routeKey]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		routes[routeKey{p.From, p.To}] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{routes: routes}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls++
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ports.DistanceResult{}, ctx.Err()
		}
	}
	if p.Err != nil {
		return ports.DistanceResult{}, p.Err
	}
	r, ok := p.routes[routeKey{origin, destination}]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("mock distance: no route %v -> %v", origin.CoordsToList(), destination.CoordsToList())
	}
	return r, nil
}
