package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
)

const (
	dirPermissions  = 0755
	filePermissions = 0644
)

// FileStore keeps one snapshot file per key in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Name implements Store
func (s *FileStore) Name() string {
	return "file"
}

// Path returns the file a key is stored in
func (s *FileStore) Path(key Key) string {
	return filepath.Join(s.dir, fileName(key))
}

// fileName is the base name a key is stored under
func fileName(key Key) string {
	return fmt.Sprintf("asgraph-%d-%s.snap", key.Year, key.Family)
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, key Key) (*asgraph.Graph, error) {
	if err := checkKey(key); err != nil {
		return nil, s.wrap("get", key, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.wrap("get", key, err)
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, s.wrap("get", key, ErrNotFound)
		}
		return nil, s.wrap("get", key, err)
	}

	g, err := Decode(data)
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	if err := checkGraph(key, g); err != nil {
		return nil, s.wrap("get", key, err)
	}
	return g, nil
}

// Put implements Store. The snapshot is written to a temporary file first
// and renamed into place, so readers never see a partial file.
func (s *FileStore) Put(ctx context.Context, key Key, g *asgraph.Graph) error {
	if err := checkKey(key); err != nil {
		return s.wrap("put", key, err)
	}
	if err := ctx.Err(); err != nil {
		return s.wrap("put", key, err)
	}

	data, err := Encode(g)
	if err != nil {
		return s.wrap("put", key, err)
	}

	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return s.wrap("put", key, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return s.wrap("put", key, fmt.Errorf("failed to write snapshot: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return s.wrap("put", key, fmt.Errorf("failed to sync snapshot: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return s.wrap("put", key, fmt.Errorf("failed to close snapshot: %w", err))
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath)
		return s.wrap("put", key, fmt.Errorf("failed to chmod snapshot: %w", err))
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return s.wrap("put", key, fmt.Errorf("failed to rename snapshot: %w", err))
	}
	return nil
}

func (s *FileStore) wrap(op string, key Key, err error) error {
	return &Error{Op: op, Backend: s.Name(), Key: key, Cause: err}
}
