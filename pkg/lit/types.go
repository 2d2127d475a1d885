// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package lit

import (
	"nickandperla.net/lit/internal/eval"
	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/parse"
	"nickandperla.net/lit/internal/symbol"
	"nickandperla.net/lit/internal/types"
)

type (
	Literal    = expr.Literal
	Word       = expr.Word
	TypedWord  = expr.TypedWord
	Operator   = expr.Operator
	Operand    = expr.Operand
	Expression = expr.Expression
	Pointer    = expr.Pointer
	Handle     = heap.Handle
	Kind       = types.Kind
	Value      = types.Value
	AutoType   = parse.AutoType

	BinaryFunc   = optable.BinaryFunc
	FunctionFunc = optable.Func
	AssignFunc   = optable.AssignFunc

	ParseError    = parse.Error
	OperatorError = eval.OperatorError
)

const (
	AutoOff      = parse.AutoOff
	AutoClassify = parse.AutoClassify
	AutoCommit   = parse.AutoCommit
)

var (
	ErrExhausted       = heap.ErrExhausted
	ErrNotEmpty        = heap.ErrNotEmpty
	ErrNoMatch         = types.ErrNoMatch
	ErrConversion      = types.ErrConversion
	ErrReference       = expr.ErrReference
	ErrUnknownOperator = optable.ErrUnknownOperator
	ErrUnbound         = symbol.ErrUnbound
	ErrUnbalanced      = parse.ErrUnbalanced
	ErrTooDeep         = parse.ErrTooDeep
	ErrReduceTooDeep   = eval.ErrTooDeep
)

// Detail returns a tagged dump of a literal tree for debugging.
func Detail(l Literal) string {
	return expr.Detail(l)
}
