package web

import (
	"sync"
	"time"

	"herald/internal/models"
)

// State holds the latest board snapshot for the status endpoint. The cycle
// publishes after each pass; HTTP handlers only read.
type State struct {
	mu      sync.RWMutex
	items   []models.BoardItem
	updated time.Time
}

// NewState creates an empty snapshot state.
func NewState() *State {
	return &State{}
}

// Set replaces the published snapshot.
func (s *State) Set(items []models.BoardItem) {
	s.mu.Lock()
	s.items = items
	s.updated = time.Now()
	s.mu.Unlock()
}

// Get returns the current snapshot and its publish time. Callers must treat
// the returned slice as read-only.
func (s *State) Get() ([]models.BoardItem, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items, s.updated
}
