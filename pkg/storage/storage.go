// Package storage provides the archive of uploaded source documents.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no archived file has the requested ID.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for archive operations
type Storage interface {
	// Save stores a file and returns its metadata
	Save(ctx context.Context, filename, contentType, fingerprint string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for an archived file
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, fileID uuid.UUID) error

	// List returns all archived files, oldest first
	List(ctx context.Context) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without opening it
	GetInfo(ctx context.Context, fileID uuid.UUID) (*FileInfo, error)

	// Prune deletes files archived before cutoff and returns how many were removed
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
