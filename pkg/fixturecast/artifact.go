package fixturecast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ArtifactStore persists fitted models under a name.
// Load of an unknown name returns an error wrapping ErrModelNotFound.
type ArtifactStore interface {
	Save(ctx context.Context, name string, m *Model) error
	Load(ctx context.Context, name string) (*Model, error)
}

var artifactName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validateArtifactName(name string) error {
	if !artifactName.MatchString(name) {
		return fmt.Errorf("invalid model name %q", name)
	}
	return nil
}

// FileStore keeps each model as a JSON file in a directory
type FileStore struct {
	Dir string
}

var _ ArtifactStore = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+".model.json")
}

// Save writes the model through a temporary file so a reader never sees half a model
func (s *FileStore) Save(ctx context.Context, name string, m *Model) error {
	if err := validateArtifactName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

// Load reads and validates the named model
func (s *FileStore) Load(ctx context.Context, name string) (*Model, error) {
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s in %s: %w", name, s.Dir, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return UnmarshalModel(data)
}
