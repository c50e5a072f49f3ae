package artifacts

import (
	"context"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileArtifactStore keeps each artifact as a single file under Dir.
type FileArtifactStore struct {
	Dir string
}

func NewFileArtifactStore(dir string) *FileArtifactStore {
	return &FileArtifactStore{Dir: dir}
}

func (s *FileArtifactStore) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// Save writes data to a temp file in Dir and renames it over the target,
// so readers see either the old or the new artifact.
func (s *FileArtifactStore) Save(ctx context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save artifact %q: %w", name, err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("save artifact %q: create dir: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("save artifact %q: create temp file: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save artifact %q: write: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save artifact %q: close: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), s.Location(name)); err != nil {
		return fmt.Errorf("save artifact %q: rename: %w", name, err)
	}
	return nil
}

func (s *FileArtifactStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", name, err)
	}

	data, err := os.ReadFile(s.Location(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load artifact %q: %w", name, ports.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", name, err)
	}
	return data, nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("artifact name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("artifact name %q must not contain path separators", name)
	}
	return nil
}
