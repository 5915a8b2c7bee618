// Package store holds the latest room snapshot for one room membership.
package store

import (
	"sync"

	"github.com/ayumu-k/sudoku-battle-client/pkg/types"
)

// Store is the single shared mutable resource of the engine: one writer
// (the message router path) and many readers. Replacement is a single
// assignment under the lock, never a field-by-field merge, so readers
// never observe a partially-updated snapshot.
type Store struct {
	mu   sync.RWMutex
	snap types.RoomSnapshot
	has  bool
}

func New() *Store { return &Store{} }

// Replace installs a new snapshot wholesale.
func (s *Store) Replace(snap types.RoomSnapshot) {
	s.mu.Lock()
	s.snap = snap
	s.has = true
	s.mu.Unlock()
}

// Snapshot returns the current snapshot and whether one has arrived yet.
func (s *Store) Snapshot() (types.RoomSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.has
}

// Clear tears the store down on leaving the room.
func (s *Store) Clear() {
	s.mu.Lock()
	s.snap = types.RoomSnapshot{}
	s.has = false
	s.mu.Unlock()
}
