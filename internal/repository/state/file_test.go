package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))
	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)

	r, err = LoadOrEmpty(context.Background(), repo)
	require.NoError(t, err)
	require.Empty(t, r.URLs())
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns the same URLs.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.yaml")
	repo := NewFileRepository(file)

	want := map[string]string{
		"Alerts":       "https://alerts.example/x",
		"Chat Overlay": "https://chat.example/overlay?id=1",
	}

	require.NoError(t, repo.Save(context.Background(), overlay.NewRegistry(want)))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got.URLs())

	_, err = os.Stat(file + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_Corrupt reports decode errors instead of starting empty.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(file, []byte("browser_sources: [unclosed"), 0o600))

	_, err := LoadOrEmpty(context.Background(), NewFileRepository(file))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
