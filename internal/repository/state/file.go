package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	"github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
)

// Repository defines persistence operations for captured overlay URLs.
type Repository interface {
	Load(ctx context.Context) (*overlay.Registry, error)
	Save(ctx context.Context, registry *overlay.Registry) error
}

// FileRepository persists the overlay registry to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the state file.
	path string
	// mu serialises access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// document is the on-disk layout of the state file.
type document struct {
	BrowserSources map[string]string `yaml:"browser_sources"`
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the registry from disk.
func (r *FileRepository) Load(_ context.Context) (*overlay.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc document
	if err = yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return overlay.NewRegistry(doc.BrowserSources), nil
}

// LoadOrEmpty returns an empty registry when no state was saved yet.
func LoadOrEmpty(ctx context.Context, repo Repository) (*overlay.Registry, error) {
	registry, err := repo.Load(ctx)
	switch {
	case err == nil:
		return registry, nil
	case errors.Is(err, ErrNotFound):
		return overlay.NewRegistry(nil), nil
	default:
		return nil, err
	}
}

// Save writes the registry to disk. The file is replaced atomically.
func (r *FileRepository) Save(_ context.Context, registry *overlay.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(document{BrowserSources: registry.URLs()})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
