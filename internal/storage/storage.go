// Package storage reads embedding files and catalogue tables from a local
// directory or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrObjectNotFound is returned when a key does not exist in the store.
var ErrObjectNotFound = errors.New("object not found")

// Driver names accepted by New.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// ObjectStore is a read-only view over named objects.
type ObjectStore interface {
	// Open returns a reader over the whole object. Missing keys yield ErrObjectNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Ping checks that the backing directory or bucket is reachable.
	Ping(ctx context.Context) error
	// Describe returns a human-readable location for logs.
	Describe() string
}

// Config selects and parameterizes a backend.
type Config struct {
	Driver string
	Root   string // local directory
	S3     S3Config
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (ObjectStore, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocal(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// ReadAll opens key and reads it fully.
func ReadAll(ctx context.Context, s ObjectStore, key string) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err //nolint:wrapcheck // backends wrap with the key
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
