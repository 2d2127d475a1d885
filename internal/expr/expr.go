// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines the lit Literal tagged union.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/token"
)

// ErrReference is returned when a textual reference is taken to a literal
// that has no text of its own.
var ErrReference = errors.New("literal has no textual reference")

// Literal is the interface all literal variants implement.
type Literal interface {
	// Tag returns the variant of the literal.
	Tag() token.Tag
	// String returns the source-like representation of the literal.
	String() string
}

// Word is an unresolved textual token.
type Word struct {
	Text string
}

func (w Word) Tag() token.Tag { return token.WORD }
func (w Word) String() string { return w.Text }

// TypedWord is a token whose type has been classified but not committed.
type TypedWord struct {
	Text string
	Kind string // Registered type id
}

func (w TypedWord) Tag() token.Tag { return token.TYPED_WORD }
func (w TypedWord) String() string { return w.Text }

// Operand names a registered operator and its kind.
type Operand struct {
	Kind token.Operand
	Name string
}

func (o Operand) String() string { return o.Name }

// Operator is a resolved reference to a registered operator.
type Operator struct {
	Op Operand
}

func (o Operator) Tag() token.Tag { return token.OPERATOR }
func (o Operator) String() string { return o.Op.Name }

// Expression is an ordered group of literals.
type Expression struct {
	Items []Literal
	Ref   string // Symbol name, set when the group substitutes a bound symbol
}

func (e Expression) Tag() token.Tag { return token.EXPRESSION }

func (e Expression) String() string {
	var sb strings.Builder
	sb.WriteRune(token.RuneOpen)
	for _, l := range e.Items {
		sb.WriteRune(token.RuneSpace)
		sb.WriteString(l.String())
	}
	sb.WriteRune(token.RuneSpace)
	sb.WriteRune(token.RuneClose)
	return sb.String()
}

// Pointer is a value committed to a heap. Addr holds the packed handle.
type Pointer struct {
	Addr uint64
	Kind string // Registered type id used to reinterpret the bytes
}

// NewPointer creates a Pointer for a heap handle.
func NewPointer(h heap.Handle, kind string) Pointer {
	return Pointer{Addr: h.Pack(), Kind: kind}
}

// Handle returns the unpacked heap handle.
func (p Pointer) Handle() heap.Handle { return heap.Unpack(p.Addr) }

func (p Pointer) Tag() token.Tag { return token.POINTER }

func (p Pointer) String() string {
	return p.Handle().String() + ":" + p.Kind
}

// NewExpression creates an Expression from literals.
func NewExpression(items ...Literal) Expression {
	return Expression{Items: items}
}

// Text returns the reference text of a literal. Expressions and pointers
// have none and yield ErrReference.
func Text(l Literal) (string, error) {
	if l == nil {
		return "", fmt.Errorf("nil literal: %w", ErrReference)
	}
	if !l.Tag().IsTextual() {
		return "", fmt.Errorf("%s %s: %w", l.Tag(), l.String(), ErrReference)
	}
	return l.String(), nil
}

// Detail returns a tagged dump of a literal tree for debugging.
func Detail(l Literal) string {
	var sb strings.Builder
	writeDetail(&sb, l)
	return sb.String()
}

func writeDetail(sb *strings.Builder, l Literal) {
	switch v := l.(type) {
	case Word:
		fmt.Fprintf(sb, "(WORD: %s)", v.Text)
	case TypedWord:
		fmt.Fprintf(sb, "(TYPED: %s %s)", v.Text, v.Kind)
	case Operator:
		fmt.Fprintf(sb, "(OP %s: %s)", v.Op.Kind, v.Op.Name)
	case Pointer:
		fmt.Fprintf(sb, "(PTR: %s)", v.String())
	case Expression:
		sb.WriteString("(EXP:")
		for _, sub := range v.Items {
			sb.WriteString(" ")
			writeDetail(sb, sub)
		}
		sb.WriteString(")")
	default:
		sb.WriteString("(NIL)")
	}
}

// Equal reports whether two literal trees are identical.
func Equal(a, b Literal) bool {
	ea, aok := a.(Expression)
	eb, bok := b.(Expression)
	if aok || bok {
		if !aok || !bok || len(ea.Items) != len(eb.Items) || ea.Ref != eb.Ref {
			return false
		}
		for i := range ea.Items {
			if !Equal(ea.Items[i], eb.Items[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
