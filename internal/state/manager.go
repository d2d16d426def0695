package state

import (
	"context"
	"sync"

	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
)

// Manager owns the in-memory application state and is its single writer.
// Every mutation runs under the lock and is followed by a save, so a
// grade/save pair behaves as one logical transaction: readers only ever
// see the state before or after it, never in between.
type Manager struct {
	mu    sync.RWMutex
	store *Store
	state *models.AppState
	log   *logger.Logger
}

// NewManager loads the persisted state (or defaults) and wraps it.
func NewManager(ctx context.Context, store *Store) *Manager {
	return &Manager{
		store: store,
		state: store.Load(ctx),
		log:   logger.Default().WithPrefix("state"),
	}
}

// Snapshot returns a deep copy of the current state for read-side queries.
func (m *Manager) Snapshot() *models.AppState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Update applies fn to a copy of the state and, if fn succeeds, commits
// the copy and persists it, write-after-update. An fn error discards the
// copy. A persistence failure is non-fatal: the in-memory update stands,
// the write is dropped with a warning, and the app keeps running.
func (m *Manager) Update(ctx context.Context, fn func(*models.AppState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// fn works on a clone so a failed update leaves state untouched.
	next := m.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	m.state = next
	if err := m.store.Save(ctx, m.state); err != nil {
		m.log.Warn("state not persisted for this session: %v", err)
	}
	return nil
}

// Replace swaps in a whole new state, used by import and reset.
func (m *Manager) Replace(ctx context.Context, next *models.AppState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = next
	if err := m.store.Save(ctx, m.state); err != nil {
		m.log.Warn("replacement state not persisted: %v", err)
	}
}

// Close persists the final state on shutdown.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(ctx, m.state); err != nil {
		m.log.Warn("final state save failed: %v", err)
	}
}
