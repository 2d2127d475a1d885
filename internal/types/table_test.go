// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package types

import (
	"errors"
	"strings"
	"testing"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
)

func TestClassifyBuiltins(t *testing.T) {
	table := Builtin()

	tests := []struct {
		text     string
		expected ID
	}{
		{"3", KindI32},
		{"-42", KindI32},
		{"2147483648", KindI64},
		{"-9000000000", KindI64},
		{"7u", KindU32},
		{"4294967295u", KindU32},
		{"2.5", KindF32},
		{"1e10", KindF32},
		{"3.14", KindF64},
		{"0.1", KindF64},
		{"1e300", KindF64},
		{"true", KindBool},
		{"false", KindBool},
	}
	for _, tt := range tests {
		got, err := table.Classify(tt.text)
		if err != nil {
			t.Fatalf("classify '%s': %v", tt.text, err)
		}
		if got != tt.expected {
			t.Errorf("classify '%s': expected %s, got %s", tt.text, tt.expected, got)
		}
	}
}

func TestClassifyNoMatch(t *testing.T) {
	table := Builtin()
	for _, text := range []string{"abc", "x1", "", "+", "NaN", "Inf", "u", "-1u", "4294967296u", "2.5u"} {
		if _, err := table.Classify(text); !errors.Is(err, ErrNoMatch) {
			t.Errorf("classify '%s': expected ErrNoMatch, got %v", text, err)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	table := Builtin()
	for _, text := range []string{"7", "7.5", "true", "99999999999"} {
		first, _ := table.Classify(text)
		for i := 0; i < 20; i++ {
			if got, _ := table.Classify(text); got != first {
				t.Fatalf("classify '%s' changed from %s to %s", text, first, got)
			}
		}
	}
}

func word(match string) Funcs {
	return Funcs{
		Name:    ID(match),
		MatchFn: func(text string) bool { return strings.HasPrefix(text, "w") },
		ParseFn: func(text string) (Value, error) { return Boxed{Of: ID(match), V: text}, nil },
	}
}

func TestPriorityAndRegistrationOrder(t *testing.T) {
	table := NewTypeTable()
	table.Register(word("low"), 1)
	table.Register(word("first"), 5)
	table.Register(word("second"), 5)

	got, err := table.Classify("word")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got != "first" {
		t.Errorf("expected tie broken by registration order (first), got %s", got)
	}

	table.Register(word("high"), 9)
	if got, _ := table.Classify("word"); got != "high" {
		t.Errorf("expected higher priority to win, got %s", got)
	}

	ids := table.Kinds()
	expected := []ID{"high", "first", "second", "low"}
	if len(ids) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, ids)
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("rule %d: expected %s, got %s", i, expected[i], ids[i])
		}
	}
}

func TestRegisterReplaces(t *testing.T) {
	table := NewTypeTable()
	table.Register(word("w"), 1)
	table.Register(Funcs{Name: "w", MatchFn: func(string) bool { return false }}, 1)

	if len(table.Kinds()) != 1 {
		t.Fatalf("expected one rule after re-register, got %v", table.Kinds())
	}
	if _, err := table.Classify("word"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected replaced rule to stop matching, got %v", err)
	}
}

func TestParseConversionError(t *testing.T) {
	table := Builtin()

	_, err := table.Parse(expr.Word{Text: "abc"}, KindI32)
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConversionError, got %T", err)
	}
	if ce.Literal != "abc" || ce.Kind != KindI32 {
		t.Errorf("unexpected error fields: %+v", ce)
	}
	if !strings.Contains(err.Error(), "abc") || !strings.Contains(err.Error(), "i32") {
		t.Errorf("error should name literal and kind: %v", err)
	}

	if _, err := table.Parse(expr.NewExpression(), KindI32); !errors.Is(err, ErrConversion) {
		t.Errorf("expression: expected ErrConversion, got %v", err)
	}
	if _, err := table.Parse(expr.Word{Text: "1"}, "nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParseToLiteral(t *testing.T) {
	table := Builtin()

	tests := []struct {
		lit  expr.Literal
		kind ID
		text string
	}{
		{expr.Word{Text: "12"}, KindI32, "12"},
		{expr.Word{Text: "12"}, KindF64, "12"},
		{expr.TypedWord{Text: "2.5", Kind: "f32"}, KindF32, "2.5"},
		{expr.Word{Text: "4000000000"}, KindU32, "4000000000u"},
		{expr.Word{Text: "7u"}, KindU32, "7u"},
		{expr.Word{Text: "true"}, KindBool, "true"},
	}
	for _, tt := range tests {
		v, err := table.Parse(tt.lit, tt.kind)
		if err != nil {
			t.Fatalf("parse %s as %s: %v", tt.lit, tt.kind, err)
		}
		if v.Kind() != tt.kind {
			t.Errorf("expected kind %s, got %s", tt.kind, v.Kind())
		}
		l, err := table.ToLiteral(v)
		if err != nil {
			t.Fatalf("to literal: %v", err)
		}
		if l != (expr.Word{Text: tt.text}) {
			t.Errorf("expected Word(%s), got %#v", tt.text, l)
		}
		typed, err := table.ToTyped(v)
		if err != nil {
			t.Fatalf("to typed: %v", err)
		}
		if typed.Kind != string(tt.kind) || typed.Text != tt.text {
			t.Errorf("unexpected typed word %#v", typed)
		}
	}
}

func TestAutoParse(t *testing.T) {
	table := Builtin()

	b, err := table.AutoParse(expr.Word{Text: "7"})
	if err != nil {
		t.Fatalf("auto parse: %v", err)
	}
	if b.Value != Int32(7) {
		t.Errorf("expected i32 7, got %#v", b.Value)
	}
	if string(b.Raw) != string(heap.Bytes(int32(7))) {
		t.Errorf("unexpected bytes %v", b.Raw)
	}

	// A typed word keeps its kind.
	b, err = table.AutoParse(expr.TypedWord{Text: "7", Kind: "f64"})
	if err != nil {
		t.Fatalf("auto parse typed: %v", err)
	}
	if b.Value != Float64(7) {
		t.Errorf("expected f64 7, got %#v", b.Value)
	}

	if _, err := table.AutoParse(expr.Word{Text: "seven"}); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
	if _, err := table.AutoParse(expr.NewExpression()); !errors.Is(err, expr.ErrReference) {
		t.Errorf("expected ErrReference, got %v", err)
	}

	unbyteable := NewTypeTable()
	unbyteable.Register(word("w"), 1)
	if _, err := unbyteable.AutoParse(expr.Word{Text: "wat"}); !errors.Is(err, ErrConversion) {
		t.Errorf("expected byte-converter rejection, got %v", err)
	}
}

func TestMaterializeResolve(t *testing.T) {
	table := Builtin()
	h := heap.New(0)

	p, err := table.Materialize(h, expr.Word{Text: "2.5"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if p.Kind != "f32" || p.Handle().Length != 4 {
		t.Errorf("unexpected pointer %v", p)
	}
	floats, err := heap.ReadAs[float32](h, p.Handle())
	if err != nil || floats[0] != 2.5 {
		t.Errorf("heap holds %v, %v", floats, err)
	}

	v, err := table.Resolve(h, p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v != Float32(2.5) {
		t.Errorf("expected f32 2.5, got %#v", v)
	}

	same, err := table.Materialize(h, p)
	if err != nil || same != p {
		t.Errorf("materializing a pointer should return it: %v %v", same, err)
	}

	v, err = table.Resolve(h, expr.TypedWord{Text: "3", Kind: "i64"})
	if err != nil || v != Int64(3) {
		t.Errorf("resolve typed word: %#v %v", v, err)
	}

	ptr, err := table.Commit(h, Bool(true))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if v, _ := table.Resolve(h, ptr); v != Bool(true) {
		t.Errorf("expected true, got %#v", v)
	}
}

func TestMaterializeExhausted(t *testing.T) {
	table := Builtin()
	h := heap.New(4, heap.WithFixedSize())
	if _, err := table.Materialize(h, expr.Word{Text: "1"}); err != nil {
		t.Fatalf("first materialize: %v", err)
	}
	if _, err := table.Materialize(h, expr.Word{Text: "2"}); !errors.Is(err, heap.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestFormatUnknownKind(t *testing.T) {
	table := NewTypeTable()
	if _, err := table.Format(Int32(1)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := table.Format(nil); err == nil {
		t.Error("expected error formatting nil")
	}
}
