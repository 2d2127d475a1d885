// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package symbol implements the lit symbol table of variable bindings.
package symbol

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/optable"
)

// ErrUnbound is returned when a name has no binding.
var ErrUnbound = errors.New("unbound symbol")

// Table maps the text of a literal key to a bound literal.
type Table struct {
	mu    sync.RWMutex
	store map[string]expr.Literal
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{
		store: make(map[string]expr.Literal),
	}
}

// Insert binds the text of key to v. Keys without text yield
// expr.ErrReference.
func (t *Table) Insert(key, v expr.Literal) error {
	name, err := expr.Text(key)
	if err != nil {
		return err
	}
	t.Bind(name, v)
	return nil
}

// Bind binds name to v.
func (t *Table) Bind(name string, v expr.Literal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store[name] = v
}

// Contains returns true if the text of key is bound.
func (t *Table) Contains(key expr.Literal) bool {
	name, err := expr.Text(key)
	if err != nil {
		return false
	}
	return t.Has(name)
}

// Has returns true if name is bound.
func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.store[name]
	return ok
}

// Retrieve returns the literal bound to the text of key.
func (t *Table) Retrieve(key expr.Literal) (expr.Literal, bool) {
	name, err := expr.Text(key)
	if err != nil {
		return nil, false
	}
	return t.Get(name)
}

// Get returns the literal bound to name.
func (t *Table) Get(name string) (expr.Literal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.store[name]
	return v, ok
}

// MustGet returns the literal bound to name or ErrUnbound.
func (t *Table) MustGet(name string) (expr.Literal, error) {
	if v, ok := t.Get(name); ok {
		return v, nil
	}
	if near := optable.Suggest(name, t.Names()); near != "" {
		return nil, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnbound, name, near)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
}

// Delete removes a binding.
func (t *Table) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.store, name)
}

// Names returns every bound name in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.store))
	for name := range t.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone creates a shallow copy of the table.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clone := New()
	for k, v := range t.store {
		clone.store[k] = v
	}
	return clone
}
