// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parse builds nested lit expression trees from source text.
package parse

import (
	"errors"
	"io"
	"os"
	"strings"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/scanner"
	"nickandperla.net/lit/internal/symbol"
	"nickandperla.net/lit/internal/token"
	"nickandperla.net/lit/internal/types"
)

// AutoType controls what the builder does with plain words.
type AutoType int

const (
	// AutoOff leaves plain words as Word.
	AutoOff AutoType = iota
	// AutoClassify turns words a registered kind recognizes into TypedWord.
	AutoClassify
	// AutoCommit commits recognized words to the heap as Pointer.
	AutoCommit
)

// String returns the string representation of an AutoType.
func (a AutoType) String() string {
	switch a {
	case AutoOff:
		return "off"
	case AutoClassify:
		return "classify"
	case AutoCommit:
		return "commit"
	}
	return "unknown"
}

// ParseAutoType parses the string form of an AutoType.
func ParseAutoType(s string) (AutoType, bool) {
	switch strings.ToLower(s) {
	case "off", "":
		return AutoOff, true
	case "classify":
		return AutoClassify, true
	case "commit":
		return AutoCommit, true
	}
	return AutoOff, false
}

// DefaultMaxDepth bounds group nesting unless WithMaxDepth overrides it.
const DefaultMaxDepth = 512

// Builder turns source text into an Expression tree.
type Builder struct {
	ops      *optable.OpTable
	refs     *symbol.Table
	types    *types.TypeTable
	heap     *heap.ByteHeap
	auto     AutoType
	maxDepth int
}

// Option configures a Builder.
type Option func(*Builder)

// WithSymbols resolves bound words through refs.
func WithSymbols(refs *symbol.Table) Option {
	return func(b *Builder) { b.refs = refs }
}

// WithTypes sets the type table used for auto-typing.
func WithTypes(t *types.TypeTable) Option {
	return func(b *Builder) { b.types = t }
}

// WithHeap sets the heap AutoCommit writes to.
func WithHeap(h *heap.ByteHeap) Option {
	return func(b *Builder) { b.heap = h }
}

// WithAutoType sets the auto-typing mode.
func WithAutoType(mode AutoType) Option {
	return func(b *Builder) { b.auto = mode }
}

// WithMaxDepth bounds group nesting. Values <= 0 disable the limit.
func WithMaxDepth(n int) Option {
	return func(b *Builder) { b.maxDepth = n }
}

// New creates a Builder resolving operators through ops.
func New(ops *optable.OpTable, opts ...Option) *Builder {
	b := &Builder{ops: ops, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build parses src into its root Expression.
func (b *Builder) Build(src string) (expr.Expression, error) {
	p := &pass{b: b, src: src, runes: scanner.Normalize(src)}
	return p.expressionize(0, len(p.runes), 0)
}

// BuildReader parses everything read from r.
func (b *Builder) BuildReader(r io.Reader) (expr.Expression, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return expr.Expression{}, err
	}
	return b.Build(string(data))
}

// BuildFile parses the file at path.
func (b *Builder) BuildFile(path string) (expr.Expression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return expr.Expression{}, err
	}
	return b.Build(string(data))
}

// pass holds the state of one Build call.
type pass struct {
	b     *Builder
	src   string
	runes []rune
}

// expressionize builds the group spanning runes[lo:hi].
func (p *pass) expressionize(lo, hi, depth int) (expr.Expression, error) {
	if p.b.maxDepth > 0 && depth > p.b.maxDepth {
		return expr.Expression{}, newError(p.src, lo, ErrTooDeep, "groups nest deeper than %d", p.b.maxDepth)
	}

	var (
		items []expr.Literal
		work  scanner.Buffer
	)
	flush := func() error {
		if work.IsEmpty() {
			return nil
		}
		start := work.Start()
		l, _ := work.Pull(p.b.ops, p.b.refs)
		l, err := p.autoType(l, start)
		if err != nil {
			return err
		}
		items = append(items, l)
		return nil
	}

	for i := lo; i < hi; i++ {
		switch r := p.runes[i]; r {
		case token.RuneOpen:
			if err := flush(); err != nil {
				return expr.Expression{}, err
			}
			end, err := scanner.MatchDelimiter(p.runes[:hi], i, token.RuneOpen, token.RuneClose)
			if err != nil {
				return expr.Expression{}, newError(p.src, i, err, "'%c' is never closed", token.RuneOpen)
			}
			child, err := p.expressionize(i+1, end, depth+1)
			if err != nil {
				return expr.Expression{}, err
			}
			items = append(items, child)
			i = end
		case token.RuneClose:
			return expr.Expression{}, newError(p.src, i, ErrUnbalanced, "unexpected '%c'", token.RuneClose)
		case token.RuneSpace:
			if err := flush(); err != nil {
				return expr.Expression{}, err
			}
		default:
			work.Push(r, i)
		}
	}
	if err := flush(); err != nil {
		return expr.Expression{}, err
	}
	return expr.Expression{Items: items}, nil
}

// autoType applies the builder's auto-typing mode to a plain word.
// Words no kind recognizes stay plain.
func (p *pass) autoType(l expr.Literal, offset int) (expr.Literal, error) {
	w, ok := l.(expr.Word)
	if !ok || p.b.auto == AutoOff || p.b.types == nil {
		return l, nil
	}
	switch p.b.auto {
	case AutoClassify:
		typed, err := p.b.types.ClassifyLiteral(w)
		if errors.Is(err, types.ErrNoMatch) {
			return l, nil
		}
		if err != nil {
			return nil, newError(p.src, offset, err, "%v", err)
		}
		return typed, nil
	case AutoCommit:
		if p.b.heap == nil {
			return l, nil
		}
		ptr, err := p.b.types.Materialize(p.b.heap, w)
		if errors.Is(err, types.ErrNoMatch) {
			return l, nil
		}
		if err != nil {
			return nil, newError(p.src, offset, err, "%v", err)
		}
		return ptr, nil
	}
	return l, nil
}
