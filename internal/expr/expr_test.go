// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"errors"
	"testing"

	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/token"
)

func TestString(t *testing.T) {
	plus := Operator{Op: Operand{Kind: token.BINARY, Name: "+"}}
	tests := []struct {
		lit      Literal
		expected string
	}{
		{Word{Text: "abc"}, "abc"},
		{TypedWord{Text: "3", Kind: "i32"}, "3"},
		{plus, "+"},
		{NewExpression(Word{Text: "3"}, plus, Word{Text: "4"}), "( 3 + 4 )"},
		{NewExpression(), "( )"},
		{NewExpression(Word{Text: "a"}, NewExpression(Word{Text: "b"})), "( a ( b ) )"},
		{NewPointer(heap.Handle{Offset: 8, Length: 4}, "f32"), "@8+4:f32"},
	}
	for _, tt := range tests {
		if got := tt.lit.String(); got != tt.expected {
			t.Errorf("expected '%s', got '%s'", tt.expected, got)
		}
	}
}

func TestTags(t *testing.T) {
	tests := []struct {
		lit Literal
		tag token.Tag
	}{
		{Word{}, token.WORD},
		{TypedWord{}, token.TYPED_WORD},
		{Operator{}, token.OPERATOR},
		{Expression{}, token.EXPRESSION},
		{Pointer{}, token.POINTER},
	}
	for _, tt := range tests {
		if tt.lit.Tag() != tt.tag {
			t.Errorf("%T: expected %s, got %s", tt.lit, tt.tag, tt.lit.Tag())
		}
	}
}

func TestText(t *testing.T) {
	if s, err := Text(Word{Text: "x"}); err != nil || s != "x" {
		t.Errorf("word: got '%s', %v", s, err)
	}
	if s, err := Text(TypedWord{Text: "1.5", Kind: "f32"}); err != nil || s != "1.5" {
		t.Errorf("typed word: got '%s', %v", s, err)
	}
	if s, err := Text(Operator{Op: Operand{Kind: token.DROPIN, Name: "PI"}}); err != nil || s != "PI" {
		t.Errorf("operator: got '%s', %v", s, err)
	}
	for _, l := range []Literal{NewExpression(Word{Text: "x"}), Pointer{}, nil} {
		if _, err := Text(l); !errors.Is(err, ErrReference) {
			t.Errorf("%T: expected ErrReference, got %v", l, err)
		}
	}
}

func TestPointerHandle(t *testing.T) {
	h := heap.Handle{Offset: 16, Length: 8}
	p := NewPointer(h, "f64")
	if p.Handle() != h {
		t.Errorf("expected %v, got %v", h, p.Handle())
	}
	if p.Addr != 16<<32|8 {
		t.Errorf("unexpected packed address %#x", p.Addr)
	}
}

func TestDetail(t *testing.T) {
	l := NewExpression(Word{Text: "a"}, Operator{Op: Operand{Kind: token.BINARY, Name: "+"}}, NewExpression(Word{Text: "b"}))
	expected := "(EXP: (WORD: a) (OP BINARY: +) (EXP: (WORD: b)))"
	if got := Detail(l); got != expected {
		t.Errorf("expected '%s', got '%s'", expected, got)
	}
}

func TestEqual(t *testing.T) {
	a := NewExpression(Word{Text: "a"}, NewExpression(Word{Text: "b"}))
	b := NewExpression(Word{Text: "a"}, NewExpression(Word{Text: "b"}))
	c := NewExpression(Word{Text: "a"}, NewExpression(Word{Text: "c"}))
	if !Equal(a, b) {
		t.Error("expected equal trees")
	}
	if Equal(a, c) {
		t.Error("expected different trees")
	}
	if Equal(a, Word{Text: "a"}) {
		t.Error("expression should not equal word")
	}
	if Equal(Word{Text: "1"}, TypedWord{Text: "1", Kind: "i32"}) {
		t.Error("word should not equal typed word")
	}
}
