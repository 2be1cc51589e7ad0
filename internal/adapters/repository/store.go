// Package repository persists uploaded payloads.
package repository

import "context"

// SavedFile describes a payload written to the store.
type SavedFile struct {
	// Name is the file name inside the store directory.
	Name string
	// Path is the absolute path of the written file.
	Path string
	// Size is the on-disk size read back after the write completed.
	Size int64
}

// Store writes upload payloads under a single directory.
type Store interface {
	// Ensure creates the directory if it is missing. An existing directory is
	// not an error.
	Ensure(ctx context.Context) error

	// Save writes data to name, replacing any existing file with that name.
	// Concurrent saves to the same name are not coordinated; the last write
	// wins.
	Save(ctx context.Context, name string, data []byte) (SavedFile, error)

	// Dir returns the absolute store directory.
	Dir() string
}
