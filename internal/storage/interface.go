package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a path does not exist in storage
var ErrNotFound = errors.New("file not found")

// StorageClient defines the interface for basic storage operations.
// Paths are slash-separated and relative to the storage root.
type StorageClient interface {
	// Close closes the storage client
	Close() error

	// StoreFile stores a file at the specified path, replacing any previous content
	StoreFile(ctx context.Context, filePath string, fileData []byte) error

	// GetFile retrieves a file from the specified path
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListDir lists the files below a prefix, sorted by path
	ListDir(ctx context.Context, prefix string) ([]string, error)

	// DeletePrefix removes every file below a prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// FileExists checks if a file exists at the specified path
	FileExists(ctx context.Context, filePath string) (bool, error)
}
