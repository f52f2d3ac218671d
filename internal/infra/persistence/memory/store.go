// Package memory provides an in-memory scene store for tests and ephemeral
// sessions.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"rewindcore/internal/infra/persistence/scene"
)

// Store keeps the current snapshot in memory. Snapshots are deep-copied
// through their JSON form on both save and load so callers never share
// mutable state with the store.
type Store struct {
	mu    sync.Mutex
	data  []byte
	saved bool
}

var _ scene.Store = (*Store)(nil)

// NewStore constructs an empty in-memory scene store.
func NewStore() *Store {
	return &Store{}
}

// Save implements scene.Store.
func (s *Store) Save(_ context.Context, snap scene.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.saved = true
	s.mu.Unlock()
	return nil
}

// Load implements scene.Store.
func (s *Store) Load(_ context.Context) (scene.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return scene.Snapshot{}, false, nil
	}
	var snap scene.Snapshot
	if err := json.Unmarshal(s.data, &snap); err != nil {
		return scene.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Close implements scene.Store.
func (s *Store) Close() error { return nil }
