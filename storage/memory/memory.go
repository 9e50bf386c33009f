// Package memory provides an in-process tab storage backend. It is the default
// backend for tests and single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/MrEthical07/goGate/storage"
)

// Backend keeps every tab's slots in one map guarded by a mutex.
type Backend struct {
	mu   sync.RWMutex
	tabs map[string]map[string]string
}

// New returns an empty in-memory backend.
func New() *Backend {
	return &Backend{tabs: make(map[string]map[string]string)}
}

// Tab returns the storage view for tabID.
func (b *Backend) Tab(tabID string) (storage.Storage, error) {
	id, err := storage.NormalizeTab(tabID)
	if err != nil {
		return nil, err
	}
	return &tab{backend: b, id: id}, nil
}

// Len reports how many keys tabID currently holds.
func (b *Backend) Len(tabID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tabs[tabID])
}

type tab struct {
	backend *Backend
	id      string
}

func (t *tab) Read(_ context.Context, key string) (string, bool, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	value, ok := t.backend.tabs[t.id][key]
	return value, ok, nil
}

func (t *tab) Write(_ context.Context, key, value string) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	slots, ok := t.backend.tabs[t.id]
	if !ok {
		slots = make(map[string]string)
		t.backend.tabs[t.id] = slots
	}
	slots[key] = value
	return nil
}

func (t *tab) Delete(_ context.Context, key string) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	slots, ok := t.backend.tabs[t.id]
	if !ok {
		return nil
	}
	delete(slots, key)
	if len(slots) == 0 {
		delete(t.backend.tabs, t.id)
	}
	return nil
}

// Slot is a standalone single-tab Storage. Useful where no backend is needed.
type Slot struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSlot returns an empty Slot.
func NewSlot() *Slot {
	return &Slot{values: make(map[string]string)}
}

func (s *Slot) Read(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *Slot) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Slot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Has reports whether key is present.
func (s *Slot) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}
