package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcala/biaslab/internal/db"
	apperrors "github.com/mcala/biaslab/internal/errors"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	t.Helper()
	require.NoError(t, closer.Close())
}

// MemoryBlobStore is an in-memory repository.BlobRepository for tests.
// MaxBytes > 0 makes Set reject larger values the way a quota-limited
// platform store would.
type MemoryBlobStore struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	MaxBytes int
	SetErr   error // returned by every Set when non-nil
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryBlobStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	if s.MaxBytes > 0 && len(value) > s.MaxBytes {
		return apperrors.NewQuotaExceededError(len(value), s.MaxBytes)
	}
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
