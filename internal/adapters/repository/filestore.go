package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/okian/assessrec/internal/domain/model"
)

const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps the snapshot as a JSON array. Goroutines of one process
// serialize on mu; processes coordinate through an advisory lock on
// "<path>.lock", so the CLI and the server can share one file.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a FileStore at path. Nothing is touched until the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) lockPath() string { return s.path + ".lock" }

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) ([]model.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	lock := flock.New(s.lockPath())
	if _, err := lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("lock snapshot: %w", err)
	}
	defer func() { _ = lock.Close() }()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var records []model.AssessmentRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	if len(records) == 0 {
		return nil, ErrNoSnapshot
	}
	return records, nil
}

// Save implements Store. The file is written to a temporary sibling and
// renamed into place.
func (s *FileStore) Save(ctx context.Context, records []model.AssessmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}
	lock := flock.New(s.lockPath())
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock snapshot: %w", err)
	}
	defer func() { _ = lock.Close() }()

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close implements Store. Locks are held only for the duration of a call.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) ensureDir() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return nil
}
