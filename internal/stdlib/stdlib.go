// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package stdlib registers the default lit operators.
package stdlib

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/token"
	"nickandperla.net/lit/internal/types"
)

// Prelude is evaluated by the runtime after the operators are registered.
//
//go:embed prelude.lit
var Prelude string

// ErrArity is returned when a function gets the wrong number of arguments.
var ErrArity = errors.New("wrong number of arguments")

// Lib evaluates the default operators against a type table and heap.
type Lib struct {
	types *types.TypeTable
	heap  *heap.ByteHeap
}

// Register adds the default operators to ops. Values are resolved through
// tt; Pointer operands are read from and results committed to h.
func Register(ops *optable.OpTable, tt *types.TypeTable, h *heap.ByteHeap) *Lib {
	l := &Lib{types: tt, heap: h}

	for name, op := range map[string]types.Op{
		"+": types.Add,
		"-": types.Sub,
		"*": types.Mul,
		"/": types.Div,
		"%": types.Rem,
	} {
		ops.InsertBinary(name, l.arith(op))
	}
	ops.InsertBinary("==", l.compare(func(a, b types.Value) (bool, error) {
		return types.Equal(a, b), nil
	}))
	ops.InsertBinary("<", l.compare(func(a, b types.Value) (bool, error) {
		c, err := types.Compare(a, b)
		return c < 0, err
	}))
	ops.InsertBinary(">", l.compare(func(a, b types.Value) (bool, error) {
		c, err := types.Compare(a, b)
		return c > 0, err
	}))

	ops.InsertFunction("sum", l.Sum)
	ops.InsertFunction("min", l.extreme(-1))
	ops.InsertFunction("max", l.extreme(1))
	ops.InsertFunction("neg", l.unary(types.Negate))
	ops.InsertFunction("abs", l.unary(types.Abs))
	ops.InsertFunction("kind", l.Kind)
	ops.InsertFunction("commit", l.Commit)

	ops.InsertDropIn("PI", expr.Word{Text: strconv.FormatFloat(math.Pi, 'g', -1, 64)})
	ops.InsertDropIn("E", expr.Word{Text: strconv.FormatFloat(math.E, 'g', -1, 64)})
	ops.InsertDropIn("TRUE", expr.Word{Text: "true"})
	ops.InsertDropIn("FALSE", expr.Word{Text: "false"})

	ops.InsertAssignment("=", nil)
	return l
}

// rep orders result representations: Word < TypedWord < Pointer.
func rep(args ...expr.Literal) token.Tag {
	out := token.WORD
	for _, a := range args {
		switch a.Tag() {
		case token.POINTER:
			return token.POINTER
		case token.TYPED_WORD:
			out = token.TYPED_WORD
		}
	}
	return out
}

func (l *Lib) value(a expr.Literal) (types.Value, error) {
	if a == nil {
		return nil, fmt.Errorf("missing operand: %w", expr.ErrReference)
	}
	return l.types.Resolve(l.heap, a)
}

// emit renders v in the representation tag.
func (l *Lib) emit(tag token.Tag, v types.Value) (expr.Literal, error) {
	switch tag {
	case token.POINTER:
		if l.heap != nil {
			return l.types.Commit(l.heap, v)
		}
	case token.TYPED_WORD:
		return l.types.ToTyped(v)
	}
	return l.types.ToLiteral(v)
}

func (l *Lib) arith(op types.Op) optable.BinaryFunc {
	return func(a, b expr.Literal) (expr.Literal, error) {
		x, err := l.value(a)
		if err != nil {
			return nil, err
		}
		y, err := l.value(b)
		if err != nil {
			return nil, err
		}
		v, err := types.Arith(op, x, y)
		if err != nil {
			return nil, err
		}
		return l.emit(rep(a, b), v)
	}
}

func (l *Lib) compare(pred func(a, b types.Value) (bool, error)) optable.BinaryFunc {
	return func(a, b expr.Literal) (expr.Literal, error) {
		x, err := l.value(a)
		if err != nil {
			return nil, err
		}
		y, err := l.value(b)
		if err != nil {
			return nil, err
		}
		ok, err := pred(x, y)
		if err != nil {
			return nil, err
		}
		return l.emit(rep(a, b), types.Bool(ok))
	}
}

// Sum adds its arguments. An empty sum is 0.
func (l *Lib) Sum(args []expr.Literal) (expr.Literal, error) {
	if len(args) == 0 {
		return expr.Word{Text: "0"}, nil
	}
	acc, err := l.value(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		v, err := l.value(a)
		if err != nil {
			return nil, err
		}
		if acc, err = types.Arith(types.Add, acc, v); err != nil {
			return nil, err
		}
	}
	return l.emit(rep(args...), acc)
}

// extreme returns min (sign -1) or max (sign 1). The winning argument is
// returned as written.
func (l *Lib) extreme(sign int) optable.Func {
	return func(args []expr.Literal) (expr.Literal, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: expected at least 1, got 0", ErrArity)
		}
		best := args[0]
		bv, err := l.value(best)
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			v, err := l.value(a)
			if err != nil {
				return nil, err
			}
			c, err := types.Compare(v, bv)
			if err != nil {
				return nil, err
			}
			if c*sign > 0 {
				best, bv = a, v
			}
		}
		return best, nil
	}
}

func (l *Lib) unary(fn func(types.Value) (types.Value, error)) optable.Func {
	return func(args []expr.Literal) (expr.Literal, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: expected 1, got %d", ErrArity, len(args))
		}
		x, err := l.value(args[0])
		if err != nil {
			return nil, err
		}
		v, err := fn(x)
		if err != nil {
			return nil, err
		}
		return l.emit(rep(args...), v)
	}
}

// Kind returns the type id of its single argument as a Word.
func (l *Lib) Kind(args []expr.Literal) (expr.Literal, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected 1, got %d", ErrArity, len(args))
	}
	switch a := args[0].(type) {
	case expr.Pointer:
		return expr.Word{Text: a.Kind}, nil
	case expr.TypedWord:
		if a.Kind != "" {
			return expr.Word{Text: a.Kind}, nil
		}
	}
	text, err := expr.Text(args[0])
	if err != nil {
		return nil, err
	}
	id, err := l.types.Classify(text)
	if err != nil {
		return nil, err
	}
	return expr.Word{Text: string(id)}, nil
}

// Commit stores its single argument in the heap and returns the Pointer.
func (l *Lib) Commit(args []expr.Literal) (expr.Literal, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected 1, got %d", ErrArity, len(args))
	}
	if l.heap == nil {
		return nil, errors.New("commit: no heap")
	}
	return l.types.Materialize(l.heap, args[0])
}
