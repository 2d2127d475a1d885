// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package scanner

import (
	"errors"
	"testing"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/symbol"
	"nickandperla.net/lit/internal/token"
)

func TestBufferLifecycle(t *testing.T) {
	var b Buffer
	if !b.IsEmpty() {
		t.Fatal("new buffer should be idle")
	}
	if _, ok := b.Pull(nil, nil); ok {
		t.Fatal("pulling an idle buffer should yield nothing")
	}

	b.Push('a', 4)
	b.Push('b', 5)
	if b.Start() != 4 {
		t.Errorf("expected start 4, got %d", b.Start())
	}
	if b.String() != "ab" {
		t.Errorf("expected 'ab', got '%s'", b.String())
	}
	l, ok := b.Pull(nil, nil)
	if !ok || l != (expr.Word{Text: "ab"}) {
		t.Errorf("expected Word(ab), got %v", l)
	}
	if !b.IsEmpty() {
		t.Error("pull should clear the buffer")
	}

	b.Push('c', 9)
	if b.Start() != 9 {
		t.Errorf("expected start reset to 9, got %d", b.Start())
	}
	b.Clear()
	if !b.IsEmpty() {
		t.Error("clear should empty the buffer")
	}
}

func TestResolveOrder(t *testing.T) {
	ops := optable.New()
	ops.InsertDropIn("PI", expr.Word{Text: "3.14"})
	refs := symbol.New()
	refs.Bind("x", expr.Word{Text: "5"})
	refs.Bind("PI", expr.Word{Text: "shadowed"})

	if l := Resolve("PI", ops, refs); l.Tag() != token.OPERATOR {
		t.Errorf("operators resolve before symbols, got %v", expr.Detail(l))
	}

	l := Resolve("x", ops, refs)
	e, ok := l.(expr.Expression)
	if !ok || len(e.Items) != 1 || e.Items[0] != (expr.Word{Text: "5"}) || e.Ref != "x" {
		t.Errorf("expected symbol wrapped in expression, got %v", expr.Detail(l))
	}

	if l := Resolve("y", ops, refs); l != (expr.Word{Text: "y"}) {
		t.Errorf("expected Word(y), got %v", l)
	}
}

func TestNormalize(t *testing.T) {
	got := string(Normalize("a\nb\r\n\tc"))
	if got != "a b   c " {
		t.Errorf("expected 'a b   c ', got '%s'", got)
	}
	if len(Normalize("")) != 1 {
		t.Error("expected a single padding space")
	}
}

func TestMatchDelimiter(t *testing.T) {
	tests := []struct {
		src      string
		start    int
		expected int
	}{
		{"( a )", 0, 4},
		{"( a ( b c ) d )", 0, 14},
		{"( a ( b c ) d )", 4, 10},
		{"(())", 1, 2},
	}
	for _, tt := range tests {
		got, err := MatchDelimiter([]rune(tt.src), tt.start, '(', ')')
		if err != nil {
			t.Fatalf("%s at %d: %v", tt.src, tt.start, err)
		}
		if got != tt.expected {
			t.Errorf("%s at %d: expected %d, got %d", tt.src, tt.start, tt.expected, got)
		}
	}
}

func TestMatchDelimiterUnbalanced(t *testing.T) {
	for _, tt := range []struct {
		src   string
		start int
	}{
		{"( a", 0},
		{"( ( a )", 0},
		{"a )", 0},
		{"()", 5},
	} {
		if _, err := MatchDelimiter([]rune(tt.src), tt.start, '(', ')'); !errors.Is(err, ErrUnbalanced) {
			t.Errorf("%q at %d: expected ErrUnbalanced, got %v", tt.src, tt.start, err)
		}
	}
}

func TestPosition(t *testing.T) {
	src := "ab\ncd\n(e"
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{6, 3, 1},
		{7, 3, 2},
	}
	for _, tt := range tests {
		line, col := Position(src, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("offset %d: expected %d:%d, got %d:%d", tt.offset, tt.line, tt.col, line, col)
		}
	}
}
