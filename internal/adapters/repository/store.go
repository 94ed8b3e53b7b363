// Package repository persists catalog snapshots between process runs.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/assessrec/internal/domain/model"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Store loads and saves whole catalog snapshots. Implementations keep
// record order.
type Store interface {
	// Load returns the last saved snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) ([]model.AssessmentRecord, error)
	// Save replaces the snapshot atomically.
	Save(ctx context.Context, records []model.AssessmentRecord) error
	// Close releases resources held by the store.
	Close() error
}

// Open returns the Store for backend at path. BackendNone yields a nil Store
// and no error.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON:
		return NewFileStore(path), nil
	case BackendSQLite:
		st, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendNone, "":
		return nil, nil //nolint:nilnil // no persistence configured
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
