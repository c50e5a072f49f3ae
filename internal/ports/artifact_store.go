package ports

import (
	"context"
	"errors"
)

// ErrArtifactNotFound is returned by Load when nothing was saved under a name.
var ErrArtifactNotFound = errors.New("artifact not found")

// Port: durable storage for fitted artifacts (the preprocessing plan, the model).
// Writes replace the previous artifact atomically from the reader's point of view
// or fail; they are never retried.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	// Location describes where name is stored, for logs and results.
	Location(name string) string
}
