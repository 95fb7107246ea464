package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store is the minimal blob capability the request flow needs: put a
// stream under a name, resolve names to paths, and expire old entries.
type Store interface {
	Save(name string, src io.Reader) (string, error)
	Path(name string) string
	Open(name string) (io.ReadCloser, error)
	SweepOlderThan(age time.Duration) error
}

// DiskStore keeps blobs as plain files in a single directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes src to a file named name inside the store directory and
// returns the full path.
func (s *DiskStore) Save(name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure store dir: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func (s *DiskStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *DiskStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// SweepOlderThan removes every file in the store whose modification
// time is older than age. The first error encountered is returned, but
// the sweep keeps going past individual files that cannot be removed.
func (s *DiskStore) SweepOlderThan(age time.Duration) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read store dir: %w", err)
	}

	cutoff := time.Now().Add(-age)
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// StoredName builds a collision-proof name for an uploaded file,
// keeping the original extension: <unix-ts>_<uuid><ext>.
func StoredName(original string) string {
	return fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.NewString(), filepath.Ext(original))
}
