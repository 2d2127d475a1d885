// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval reduces lit expression trees by applying registered operators
// until no operator in a group can be applied.
package eval

import (
	"errors"
	"fmt"
	"log/slog"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/symbol"
	"nickandperla.net/lit/internal/token"
)

var (
	// ErrTooDeep is returned when a tree nests deeper than the reducer allows.
	ErrTooDeep = errors.New("reduction nests too deep")
	// ErrDropInCycle is returned when a drop-in expands to another drop-in.
	ErrDropInCycle = errors.New("drop-in expands to a drop-in")
)

// DefaultMaxDepth bounds reduction recursion unless WithMaxDepth overrides it.
const DefaultMaxDepth = 512

// OperatorError wraps a failure raised while applying an operator.
type OperatorError struct {
	Name string
	Err  error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %s: %v", e.Name, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }

// Reducer applies operators from an OpTable to expression trees.
type Reducer struct {
	ops      *optable.OpTable
	refs     *symbol.Table
	log      *slog.Logger
	maxDepth int
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithSymbols sets the table assignments bind into.
func WithSymbols(refs *symbol.Table) Option {
	return func(r *Reducer) { r.refs = refs }
}

// WithLogger traces every rewrite at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reducer) { r.log = l }
}

// WithMaxDepth bounds recursion. Values <= 0 disable the limit.
func WithMaxDepth(n int) Option {
	return func(r *Reducer) { r.maxDepth = n }
}

// New creates a Reducer dispatching through ops.
func New(ops *optable.OpTable, opts ...Option) *Reducer {
	r := &Reducer{ops: ops, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	if r.refs == nil {
		r.refs = symbol.New()
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return r
}

// Symbols returns the table assignments bind into.
func (r *Reducer) Symbols() *symbol.Table {
	return r.refs
}

// Reduce rewrites l until it reaches a fixed point. Non-Expression literals
// are returned unchanged. A group left with one literal unwraps to it;
// otherwise the partially reduced group is returned.
func (r *Reducer) Reduce(l expr.Literal) (expr.Literal, error) {
	return r.reduce(l, 0)
}

func (r *Reducer) reduce(l expr.Literal, depth int) (expr.Literal, error) {
	e, ok := l.(expr.Expression)
	if !ok {
		return l, nil
	}
	items, err := r.reduceItems(e.Items, depth)
	if err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return expr.Expression{Items: items, Ref: e.Ref}, nil
}

// reduceItems reduces child groups first, then rewrites the list.
func (r *Reducer) reduceItems(in []expr.Literal, depth int) ([]expr.Literal, error) {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return nil, fmt.Errorf("%w: limit %d", ErrTooDeep, r.maxDepth)
	}

	items := make([]expr.Literal, len(in))
	copy(items, in)
	for i, item := range items {
		sub, ok := item.(expr.Expression)
		if !ok || isOperand(items, i+1, token.ASSIGNMENT) {
			continue
		}
		if isOperand(items, i-1, token.FUNCTION) {
			args, err := r.reduceItems(sub.Items, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = expr.Expression{Items: args, Ref: sub.Ref}
			continue
		}
		red, err := r.reduce(sub, depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = red
	}

	for {
		next, applied, err := r.step(items)
		if err != nil {
			return nil, err
		}
		if !applied {
			return items, nil
		}
		items = next
	}
}

// step applies the leftmost applicable operator.
func (r *Reducer) step(items []expr.Literal) ([]expr.Literal, bool, error) {
	for pos, item := range items {
		op, ok := item.(expr.Operator)
		if !ok {
			continue
		}
		switch op.Op.Kind {
		case token.DROPIN:
			res, err := r.call(op.Op, nil)
			if err != nil {
				return nil, false, err
			}
			if o, ok := res.(expr.Operator); ok && o.Op.Kind == token.DROPIN {
				return nil, false, &OperatorError{Name: op.Op.Name, Err: fmt.Errorf("%w: %s", ErrDropInCycle, o.Op.Name)}
			}
			r.trace(op.Op, pos)
			return splice(items, pos, pos+1, res), true, nil

		case token.BINARY:
			if !hasOperands(items, pos) {
				continue
			}
			res, err := r.call(op.Op, []expr.Literal{items[pos-1], items[pos+1]})
			if err != nil {
				return nil, false, err
			}
			r.trace(op.Op, pos)
			return splice(items, pos-1, pos+2, res), true, nil

		case token.ASSIGNMENT:
			if !hasOperands(items, pos) {
				continue
			}
			res, err := r.assign(op.Op, items[pos-1], items[pos+1])
			if err != nil {
				return nil, false, err
			}
			r.trace(op.Op, pos)
			return splice(items, pos-1, pos+2, res), true, nil

		case token.FUNCTION:
			if pos+1 >= len(items) {
				continue
			}
			group, ok := items[pos+1].(expr.Expression)
			if !ok {
				continue
			}
			res, err := r.call(op.Op, group.Items)
			if err != nil {
				return nil, false, err
			}
			r.trace(op.Op, pos)
			return splice(items, pos, pos+2, res), true, nil
		}
	}
	return items, false, nil
}

// assign binds the target's name to the evaluator's result.
func (r *Reducer) assign(op expr.Operand, target, value expr.Literal) (expr.Literal, error) {
	name, err := targetName(target)
	if err != nil {
		return nil, &OperatorError{Name: op.Name, Err: err}
	}
	res, err := r.call(op, []expr.Literal{target, value})
	if err != nil {
		return nil, err
	}
	r.refs.Bind(name, res)
	r.log.Debug("bind", "name", name, "value", res.String())
	return res, nil
}

func targetName(l expr.Literal) (string, error) {
	switch v := l.(type) {
	case expr.Word, expr.TypedWord:
		return expr.Text(v)
	case expr.Expression:
		if v.Ref != "" {
			return v.Ref, nil
		}
	}
	if l == nil {
		return "", fmt.Errorf("assignment target: %w", expr.ErrReference)
	}
	return "", fmt.Errorf("assignment target %s: %w", l.Tag(), expr.ErrReference)
}

func (r *Reducer) call(op expr.Operand, args []expr.Literal) (expr.Literal, error) {
	res, err := r.ops.Call(op, args)
	if err != nil {
		return nil, &OperatorError{Name: op.Name, Err: err}
	}
	if res == nil {
		return nil, &OperatorError{Name: op.Name, Err: errors.New("evaluator returned no literal")}
	}
	return res, nil
}

func (r *Reducer) trace(op expr.Operand, pos int) {
	r.log.Debug("rewrite", "op", op.Name, "kind", op.Kind.String(), "pos", pos)
}

// isOperand reports whether items[i] is an operator of the given kind.
func isOperand(items []expr.Literal, i int, kind token.Operand) bool {
	if i < 0 || i >= len(items) {
		return false
	}
	op, ok := items[i].(expr.Operator)
	return ok && op.Op.Kind == kind
}

// hasOperands reports whether the operator at pos has non-operator
// neighbours on both sides.
func hasOperands(items []expr.Literal, pos int) bool {
	if pos == 0 || pos == len(items)-1 {
		return false
	}
	_, lop := items[pos-1].(expr.Operator)
	_, rop := items[pos+1].(expr.Operator)
	return !lop && !rop
}

// splice replaces items[lo:hi] with res.
func splice(items []expr.Literal, lo, hi int, res expr.Literal) []expr.Literal {
	out := make([]expr.Literal, 0, len(items)-(hi-lo)+1)
	out = append(out, items[:lo]...)
	out = append(out, res)
	return append(out, items[hi:]...)
}
