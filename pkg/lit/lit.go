// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package lit provides the public API for the lit expression interpreter.
package lit

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"nickandperla.net/lit/internal/eval"
	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/parse"
	"nickandperla.net/lit/internal/stdlib"
	"nickandperla.net/lit/internal/store"
	"nickandperla.net/lit/internal/symbol"
	"nickandperla.net/lit/internal/types"
)

var (
	// ErrNoStore is returned by Persist and Restore when no store is configured.
	ErrNoStore = errors.New("no store configured")
	// ErrLayout is returned by Restore for a snapshot written under another heap layout.
	ErrLayout = errors.New("incompatible heap layout")
)

// Runtime owns the heap and registries of one interpreter. It is not safe
// for concurrent evaluation; each table guards itself, but a reduction
// spans several of them.
type Runtime struct {
	heap    *heap.ByteHeap
	types   *types.TypeTable
	ops     *optable.OpTable
	refs    *symbol.Table
	builder *parse.Builder
	reducer *eval.Reducer
	store   store.Store
	logger  *slog.Logger

	heapSize  int
	fixedHeap bool
	auto      AutoType
	maxDepth  int
	noStdlib  bool
	prelude   string // Custom prelude source (if empty, uses stdlib.Prelude)
	restore   bool
	err       error // First option failure, returned by New
}

// New creates a runtime. Unless WithNoStdlib is given the default kinds
// and operators are registered and the prelude is evaluated.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		heapSize: heap.DefaultSize,
		maxDepth: parse.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		r.Close()
		return nil, r.err
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	var heapOpts []heap.Option
	if r.fixedHeap {
		heapOpts = append(heapOpts, heap.WithFixedSize())
	}
	r.heap = heap.New(r.heapSize, heapOpts...)
	r.types = types.NewTypeTable()
	r.ops = optable.New()
	r.refs = symbol.New()

	if !r.noStdlib {
		types.RegisterBuiltins(r.types)
		stdlib.Register(r.ops, r.types, r.heap)
	}

	r.builder = parse.New(r.ops,
		parse.WithSymbols(r.refs),
		parse.WithTypes(r.types),
		parse.WithHeap(r.heap),
		parse.WithAutoType(r.auto),
		parse.WithMaxDepth(r.maxDepth),
	)
	r.reducer = eval.New(r.ops,
		eval.WithSymbols(r.refs),
		eval.WithLogger(r.logger),
		eval.WithMaxDepth(r.maxDepth),
	)

	if r.restore {
		if err := r.Restore(); err != nil {
			r.Close()
			return nil, fmt.Errorf("restore: %w", err)
		}
	}

	if !r.noStdlib || r.prelude != "" {
		prelude := r.prelude
		if prelude == "" {
			prelude = stdlib.Prelude
		}
		if _, err := r.Eval(prelude); err != nil {
			r.Close()
			return nil, fmt.Errorf("prelude: %w", err)
		}
		r.logger.Debug("prelude loaded", "symbols", len(r.refs.Names()))
	}
	return r, nil
}

// Parse builds the expression tree for src without reducing it.
func (r *Runtime) Parse(src string) (Expression, error) {
	tree, err := r.builder.Build(src)
	if err != nil {
		return Expression{}, parse.WrapWithSource(err, src)
	}
	return tree, nil
}

// Eval parses and reduces src.
func (r *Runtime) Eval(src string) (Literal, error) {
	tree, err := r.Parse(src)
	if err != nil {
		return nil, err
	}
	return r.reducer.Reduce(tree)
}

// EvalString evaluates src and formats the result.
func (r *Runtime) EvalString(src string) (string, error) {
	l, err := r.Eval(src)
	if err != nil {
		return "", err
	}
	return r.Format(l)
}

// EvalReader evaluates lit from a reader.
func (r *Runtime) EvalReader(reader io.Reader) (Literal, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return r.Eval(string(data))
}

// EvalFile evaluates a lit file.
func (r *Runtime) EvalFile(path string) (Literal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.EvalReader(f)
}

// Format renders a literal as text, reading Pointer values from the heap.
func (r *Runtime) Format(l Literal) (string, error) {
	switch v := l.(type) {
	case nil:
		return "", nil
	case expr.Pointer:
		val, err := r.types.Resolve(r.heap, v)
		if err != nil {
			return "", err
		}
		return r.types.Format(val)
	case expr.Expression:
		var sb strings.Builder
		sb.WriteString("(")
		for _, item := range v.Items {
			s, err := r.Format(item)
			if err != nil {
				return "", err
			}
			sb.WriteString(" " + s)
		}
		sb.WriteString(" )")
		return sb.String(), nil
	}
	return l.String(), nil
}

// Bind binds name to l.
func (r *Runtime) Bind(name string, l Literal) {
	r.refs.Bind(name, l)
}

// Lookup returns the literal bound to name.
func (r *Runtime) Lookup(name string) (Literal, bool) {
	return r.refs.Get(name)
}

// RegisterBinary registers a binary operator.
func (r *Runtime) RegisterBinary(name string, fn BinaryFunc) {
	r.ops.InsertBinary(name, fn)
}

// RegisterFunction registers a function applied to the group after it.
func (r *Runtime) RegisterFunction(name string, fn FunctionFunc) {
	r.ops.InsertFunction(name, fn)
}

// RegisterDropIn registers a name that expands to replacement.
func (r *Runtime) RegisterDropIn(name string, replacement Literal) {
	r.ops.InsertDropIn(name, replacement)
}

// RegisterAssignment registers an assignment operator. A nil fn binds the
// right-hand value unchanged.
func (r *Runtime) RegisterAssignment(name string, fn AssignFunc) {
	r.ops.InsertAssignment(name, fn)
}

// RegisterKind registers a value kind with the priority of its recognizer.
func (r *Runtime) RegisterKind(k Kind, priority int) {
	r.types.Register(k, priority)
}

// Heap returns the runtime's heap.
func (r *Runtime) Heap() *heap.ByteHeap { return r.heap }

// Types returns the runtime's type table.
func (r *Runtime) Types() *types.TypeTable { return r.types }

// Ops returns the runtime's operator table.
func (r *Runtime) Ops() *optable.OpTable { return r.ops }

// Symbols returns the runtime's symbol table.
func (r *Runtime) Symbols() *symbol.Table { return r.refs }

// Store returns the configured store, or nil.
func (r *Runtime) Store() store.Store { return r.store }

// Persist saves the occupied heap and every binding to the store.
func (r *Runtime) Persist() error {
	if r.store == nil {
		return ErrNoStore
	}
	snap := store.Snapshot{Heap: r.heap.Occupied()}
	for _, name := range r.refs.Names() {
		l, _ := r.refs.Get(name)
		b, err := store.FromLiteral(name, l)
		if err != nil {
			return err
		}
		snap.Bindings = append(snap.Bindings, b)
	}
	if err := r.store.Save(snap); err != nil {
		return err
	}
	if ms, ok := r.store.(store.MetadataStore); ok {
		if err := ms.SetMetadata(store.LayoutKey, heap.Layout); err != nil {
			return err
		}
	}
	r.logger.Debug("persisted", "bytes", len(snap.Heap), "bindings", len(snap.Bindings))
	return nil
}

// Restore loads the stored snapshot into an empty heap and rebinds every
// stored symbol. It fails with ErrNotEmpty once the heap holds data.
func (r *Runtime) Restore() error {
	if r.store == nil {
		return ErrNoStore
	}
	snap, ok, err := r.store.Load()
	if err != nil || !ok {
		return err
	}
	if ms, ok := r.store.(store.MetadataStore); ok {
		layout, err := ms.GetMetadata(store.LayoutKey)
		if err != nil {
			return err
		}
		if layout != "" && layout != heap.Layout {
			return fmt.Errorf("snapshot layout %q, heap layout %q: %w", layout, heap.Layout, ErrLayout)
		}
	}
	if err := r.heap.Restore(snap.Heap); err != nil {
		return err
	}
	for _, b := range snap.Bindings {
		l, err := b.Literal()
		if err != nil {
			return err
		}
		r.refs.Bind(b.Name, l)
	}
	r.logger.Debug("restored", "bytes", len(snap.Heap), "bindings", len(snap.Bindings))
	return nil
}

// Forget unbinds name and removes it from the store, if one is configured.
// It reports whether the name was bound or stored. Heap bytes the binding
// referred to stay in place.
func (r *Runtime) Forget(name string) (bool, error) {
	found := r.refs.Has(name)
	r.refs.Delete(name)
	if r.store == nil {
		return found, nil
	}
	_, stored, err := r.store.Get(name)
	if err != nil {
		return found, err
	}
	if stored {
		if err := r.store.Delete(name); err != nil {
			return found, err
		}
	}
	return found || stored, nil
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
