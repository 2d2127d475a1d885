// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	"slices"
	"sort"
	"sync"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu       sync.RWMutex
	bindings map[string]Binding
	heap     []byte
	saved    bool
	metadata map[string]string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		bindings: make(map[string]Binding),
		metadata: make(map[string]string),
	}
}

// Get retrieves a binding by name.
func (m *Memory) Get(name string) (Binding, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bindings[name]
	return b, ok, nil
}

// Delete removes a binding by name.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, name)
	return nil
}

// Save replaces the stored snapshot.
func (m *Memory) Save(s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heap = slices.Clone(s.Heap)
	m.bindings = make(map[string]Binding, len(s.Bindings))
	for _, b := range s.Bindings {
		m.bindings[b.Name] = b
	}
	m.saved = true
	return nil
}

// Load returns the stored snapshot with bindings sorted by name.
func (m *Memory) Load() (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.saved && len(m.bindings) == 0 {
		return Snapshot{}, false, nil
	}
	s := Snapshot{Heap: slices.Clone(m.heap)}
	for _, b := range m.bindings {
		s.Bindings = append(s.Bindings, b)
	}
	sort.Slice(s.Bindings, func(i, j int) bool { return s.Bindings[i].Name < s.Bindings[j].Name })
	return s, true, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
