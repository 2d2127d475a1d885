// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package lit

import (
	"log/slog"

	"nickandperla.net/lit/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithHeapSize sets the initial heap capacity in bytes.
func WithHeapSize(n int) Option {
	return func(r *Runtime) {
		r.heapSize = n
	}
}

// WithFixedHeap stops the heap from growing. Inserts past its capacity
// fail with ErrExhausted.
func WithFixedHeap() Option {
	return func(r *Runtime) {
		r.fixedHeap = true
	}
}

// WithAutoType sets what the parser does with words a registered kind
// recognizes.
func WithAutoType(mode AutoType) Option {
	return func(r *Runtime) {
		r.auto = mode
	}
}

// WithMaxDepth bounds group nesting while parsing and reducing.
func WithMaxDepth(n int) Option {
	return func(r *Runtime) {
		r.maxDepth = n
	}
}

// WithNoStdlib skips the default operators and the prelude.
func WithNoStdlib() Option {
	return func(r *Runtime) {
		r.noStdlib = true
	}
}

// WithPrelude replaces the prelude evaluated by New.
func WithPrelude(src string) Option {
	return func(r *Runtime) {
		r.prelude = src
	}
}

// WithLogger traces reductions at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithStore sets the snapshot store.
func WithStore(s store.Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithSQLiteStore configures SQLite persistence at the given path. An
// error opening the database is returned by New.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.err = err
			return
		}
		r.store = s
	}
}

// WithRestore loads the stored snapshot before the prelude runs.
func WithRestore() Option {
	return func(r *Runtime) {
		r.restore = true
	}
}
