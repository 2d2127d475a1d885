// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides the word buffer and delimiter scanning used by
// the lit tree builder.
package scanner

import (
	"strings"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/symbol"
)

// Buffer accumulates the runes of the pending word.
type Buffer struct {
	buf   strings.Builder
	start int // Source offset of the first pending rune
}

// Push appends a rune that starts at offset to the pending word.
func (b *Buffer) Push(r rune, offset int) {
	if b.buf.Len() == 0 {
		b.start = offset
	}
	b.buf.WriteRune(r)
}

// PushString appends s to the pending word.
func (b *Buffer) PushString(s string) {
	b.buf.WriteString(s)
}

// IsEmpty returns true if no word is pending.
func (b *Buffer) IsEmpty() bool {
	return b.buf.Len() == 0
}

// Start returns the source offset of the pending word.
func (b *Buffer) Start() int {
	return b.start
}

// String returns the pending word without consuming it.
func (b *Buffer) String() string {
	return b.buf.String()
}

// Clear discards the pending word.
func (b *Buffer) Clear() {
	b.buf.Reset()
}

// PullString consumes and returns the pending word.
func (b *Buffer) PullString() string {
	s := b.buf.String()
	b.buf.Reset()
	return s
}

// Pull consumes the pending word and resolves it: a registered operator
// becomes an Operator, a bound symbol becomes a single-element Expression
// holding its value, anything else a Word. Returns false when idle.
func (b *Buffer) Pull(ops *optable.OpTable, refs *symbol.Table) (expr.Literal, bool) {
	if b.IsEmpty() {
		return nil, false
	}
	return Resolve(b.PullString(), ops, refs), true
}

// Resolve maps a word to its literal. Either table may be nil.
func Resolve(word string, ops *optable.OpTable, refs *symbol.Table) expr.Literal {
	if ops != nil {
		if op, ok := ops.Lookup(word); ok {
			return expr.Operator{Op: op}
		}
	}
	if refs != nil {
		if v, ok := refs.Get(word); ok {
			return expr.Expression{Items: []expr.Literal{v}, Ref: word}
		}
	}
	return expr.Word{Text: word}
}
