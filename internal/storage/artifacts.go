// Package storage persists generated font artifacts on the local
// filesystem, addressed by their caller-chosen key.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrithyunjay/write-hand/internal/domain"
	"github.com/mrithyunjay/write-hand/internal/sanitize"
)

// ArtifactStore holds generated .ttf files inside a single shared output
// directory. Keys are the sanitized, caller-chosen filename field; two jobs
// that pick the same key share one slot and the later one wins.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore initializes the store rooted at dir, creating it if
// needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure output directory: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir returns the configured output directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// Path resolves the artifact location for key. The key must already be in
// sanitized form; anything else is refused so a crafted key can never
// address a path outside the output directory.
func (s *ArtifactStore) Path(key string) (string, error) {
	if !sanitize.IsClean(key) {
		return "", fmt.Errorf("%w: %q", domain.ErrBadKey, key)
	}
	return filepath.Join(s.dir, key+".ttf"), nil
}

// Exists reports whether an artifact is currently stored for key.
func (s *ArtifactStore) Exists(key string) bool {
	p, err := s.Path(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Open returns the artifact file for key, or ErrArtifactNotFound when no
// artifact is stored under it (never generated, or already served).
func (s *ArtifactStore) Open(key string) (*os.File, os.FileInfo, error) {
	p, err := s.Path(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, key)
		}
		return nil, nil, fmt.Errorf("storage: open %s: %w", p, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("storage: stat %s: %w", p, err)
	}
	return f, info, nil
}

// Remove deletes the artifact for key. An absent artifact is not an error:
// the delete-after-serve path and the cleanup path may race and both must
// succeed.
func (s *ArtifactStore) Remove(key string) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", p, err)
	}
	return nil
}
