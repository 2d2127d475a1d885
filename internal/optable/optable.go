// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package optable implements the lit operator table.
package optable

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/token"
)

var (
	// ErrUnknownOperator is returned when no evaluator is registered for a name.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrArgCount is returned when a binary, drop-in or assignment operator
	// is called with other than its arity of arguments.
	ErrArgCount = errors.New("wrong argument count")
)

// Func evaluates an operator against its argument literals.
type Func func(args []expr.Literal) (expr.Literal, error)

// BinaryFunc evaluates a binary operator.
type BinaryFunc func(left, right expr.Literal) (expr.Literal, error)

// AssignFunc computes the value an assignment binds to target.
type AssignFunc func(target, value expr.Literal) (expr.Literal, error)

type entry struct {
	op   expr.Operand
	call Func
}

// OpTable maps operator names to their operand kind and evaluator. A name
// is registered under exactly one kind; re-registering replaces it.
type OpTable struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty operator table.
func New() *OpTable {
	return &OpTable{entries: make(map[string]entry)}
}

func (t *OpTable) insert(kind token.Operand, name string, call Func) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = entry{op: expr.Operand{Kind: kind, Name: name}, call: call}
}

// InsertBinary registers a binary operator.
func (t *OpTable) InsertBinary(name string, fn BinaryFunc) {
	t.insert(token.BINARY, name, func(args []expr.Literal) (expr.Literal, error) {
		return fn(args[0], args[1])
	})
}

// InsertFunction registers an n-ary function.
func (t *OpTable) InsertFunction(name string, fn Func) {
	t.insert(token.FUNCTION, name, fn)
}

// InsertDropIn registers a zero-argument operator expanding to replacement.
func (t *OpTable) InsertDropIn(name string, replacement expr.Literal) {
	t.insert(token.DROPIN, name, func([]expr.Literal) (expr.Literal, error) {
		return replacement, nil
	})
}

// InsertAssignment registers an assignment operator. A nil fn binds the
// right-hand value unchanged.
func (t *OpTable) InsertAssignment(name string, fn AssignFunc) {
	t.insert(token.ASSIGNMENT, name, func(args []expr.Literal) (expr.Literal, error) {
		if fn == nil {
			return args[1], nil
		}
		return fn(args[0], args[1])
	})
}

// Contains returns true if name is a registered operator.
func (t *OpTable) Contains(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Lookup returns the operand registered under name.
func (t *OpTable) Lookup(name string) (expr.Operand, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	return e.op, ok
}

// Remove unregisters an operator.
func (t *OpTable) Remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, name)
}

// Call dispatches to the evaluator registered for op.
func (t *OpTable) Call(op expr.Operand, args []expr.Literal) (expr.Literal, error) {
	t.mu.RLock()
	e, ok := t.entries[op.Name]
	t.mu.RUnlock()
	if !ok {
		return nil, t.missing(op.Name)
	}
	if e.op.Kind != op.Kind {
		return nil, fmt.Errorf("%w: %s is registered as %s, not %s", ErrUnknownOperator, op.Name, e.op.Kind, op.Kind)
	}
	// A function's argument list is the group it consumes, of any length.
	if op.Kind != token.FUNCTION && len(args) != op.Kind.Arity() {
		return nil, fmt.Errorf("%w: %s %s expects %d, got %d", ErrArgCount, op.Kind, op.Name, op.Kind.Arity(), len(args))
	}
	return e.call(args)
}

func (t *OpTable) missing(name string) error {
	if near := Suggest(name, t.Names()); near != "" {
		return fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownOperator, name, near)
	}
	return fmt.Errorf("%w: %s", ErrUnknownOperator, name)
}

// Names returns every registered operator name in sorted order.
func (t *OpTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Operands returns every registered operand in name order.
func (t *OpTable) Operands() []expr.Operand {
	names := t.Names()
	t.mu.RLock()
	defer t.mu.RUnlock()
	ops := make([]expr.Operand, 0, len(names))
	for _, name := range names {
		if e, ok := t.entries[name]; ok {
			ops = append(ops, e.op)
		}
	}
	return ops
}

// Suggest returns the candidate closest to target, or "" if none is close.
func Suggest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
