// Package kv provides a unified key/value store seam with pluggable backends.
// Values are opaque byte slices and are only ever wholesale-overwritten,
// never partially mutated, so no cross-process locking discipline is needed
package kv

import (
	"context"

	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"
)

// Store is the abstract get/set/remove capability the cache depends on
type Store interface {
	// Get returns the stored value and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set unconditionally overwrites any existing value for key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the entry; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Purge removes every entry in the store
	Purge(ctx context.Context) error

	// Close releases backend resources
	Close(ctx context.Context) error
}

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend
type Config struct {
	// Backend is one of memory, sqlite, postgres
	Backend string

	// Path is the sqlite database file location
	Path string

	// URL is the postgres DSN
	URL string

	// MaxConns bounds the postgres pool, zero means driver default
	MaxConns int32
}

// settings carries cross-backend options applied during Open
type settings struct {
	log logger.Logger
}

// Option mutates settings during Open
type Option func(*settings) error

// WithLogger sets the logger used by the opened backend
func WithLogger(l logger.Logger) Option {
	return func(s *settings) error {
		s.log = l
		return nil
	}
}

// Open constructs the configured backend
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	s := settings{log: *logger.Named("kv")}
	for _, o := range opts {
		if err := o(&s); err != nil {
			return nil, err
		}
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return openSQLite(ctx, cfg, s)
	case BackendPostgres:
		return openPostgres(ctx, cfg, s)
	default:
		return nil, perr.InvalidArgf("unknown kv backend %q", cfg.Backend)
	}
}
