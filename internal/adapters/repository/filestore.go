package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultFileMode fs.FileMode = 0o644
	defaultDirMode  fs.FileMode = 0o755
)

// FileStore is a Store backed by a local directory, one file per upload.
type FileStore struct {
	dir      string
	fileMode fs.FileMode
	dirMode  fs.FileMode
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. Relative paths are resolved
// against the working directory at construction time.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir %q: %w", dir, err)
	}
	s := &FileStore{
		dir:      abs,
		fileMode: defaultFileMode,
		dirMode:  defaultDirMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the absolute store directory.
func (s *FileStore) Dir() string { return s.dir }

// Ensure creates the store directory. Concurrent creators racing on the same
// path all succeed.
func (s *FileStore) Ensure(_ context.Context) error {
	if err := os.MkdirAll(s.dir, s.dirMode); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create uploads dir %s: %w", s.dir, err)
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat uploads dir %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, s.dir)
	}
	return nil
}

// Save writes data to name inside the store directory and reports the size
// read back from disk. A failed write may leave a partial file behind.
func (s *FileStore) Save(ctx context.Context, name string, data []byte) (SavedFile, error) {
	if err := ValidateName(name); err != nil {
		return SavedFile{}, err
	}
	if err := ctx.Err(); err != nil {
		return SavedFile{}, err
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, s.fileMode); err != nil {
		return SavedFile{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return SavedFile{}, err
	}
	return SavedFile{Name: name, Path: path, Size: info.Size()}, nil
}

// ValidateName rejects names that would escape the store directory or do not
// name a regular file inside it.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return nil
}
