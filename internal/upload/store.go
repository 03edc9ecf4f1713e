// Package upload validates and persists client image uploads.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mrithyunjay/write-hand/internal/domain"
)

// DefaultExtensions is the upload extension allow-list: the image formats
// handwrite accepts as a scanned template sheet.
var DefaultExtensions = []string{"png", "jpg", "jpeg"}

// Store persists uploads into a dedicated directory. Stored names are never
// derived from client text: only the extension survives, and only after it
// passed the allow-list.
type Store struct {
	dir     string
	allowed map[string]struct{}
}

// NewStore initializes a Store rooted at dir, creating it if needed.
func NewStore(dir string, extensions []string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("upload: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: ensure directory: %w", err)
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Store{dir: dir, allowed: allowed}, nil
}

// Dir returns the configured upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Ext extracts the lowercased extension from a claimed filename, without
// the dot. It returns ErrInvalidUpload when the name has no dot or the
// extension is not allow-listed.
func (s *Store) Ext(claimed string) (string, error) {
	idx := strings.LastIndexByte(claimed, '.')
	if idx < 0 || idx == len(claimed)-1 {
		return "", fmt.Errorf("%w: filename has no extension", domain.ErrInvalidUpload)
	}
	ext := strings.ToLower(claimed[idx+1:])
	if _, ok := s.allowed[ext]; !ok {
		return "", fmt.Errorf("%w: unsupported type %q", domain.ErrInvalidUpload, ext)
	}
	return ext, nil
}

// Save validates the claimed filename and writes the upload under a fresh
// unique name, `{job-id}.{ext}`. It returns the job id and the stored path.
// Nothing is written when validation fails.
func (s *Store) Save(r io.Reader, claimed string) (jobID, path string, err error) {
	if claimed == "" {
		return "", "", fmt.Errorf("%w: no file selected", domain.ErrInvalidUpload)
	}
	ext, err := s.Ext(claimed)
	if err != nil {
		return "", "", err
	}

	jobID = strings.ReplaceAll(uuid.NewString(), "-", "")
	path = filepath.Join(s.dir, jobID+"."+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("upload: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", "", fmt.Errorf("upload: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("upload: close %s: %w", path, err)
	}
	return jobID, path, nil
}

// Remove deletes a stored upload. An already-absent file is not an error;
// deletion runs on every exit path of a job and must stay idempotent.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("upload: remove %s: %w", path, err)
	}
	return nil
}
