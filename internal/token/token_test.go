// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package token

import "testing"

func TestTagRoundTrip(t *testing.T) {
	for _, tag := range []Tag{WORD, TYPED_WORD, OPERATOR, EXPRESSION, POINTER} {
		got, ok := ParseTag(tag.String())
		if !ok || got != tag {
			t.Errorf("ParseTag(%q) = %v, %v", tag.String(), got, ok)
		}
	}
	if _, ok := ParseTag("NOPE"); ok {
		t.Error("ParseTag accepted an unknown tag")
	}
}

func TestOperandRoundTrip(t *testing.T) {
	tests := []struct {
		op    Operand
		arity int
	}{
		{BINARY, 2},
		{DROPIN, 0},
		{FUNCTION, 1},
		{ASSIGNMENT, 2},
	}
	for _, tt := range tests {
		got, ok := ParseOperand(tt.op.String())
		if !ok || got != tt.op {
			t.Errorf("ParseOperand(%q) = %v, %v", tt.op.String(), got, ok)
		}
		if tt.op.Arity() != tt.arity {
			t.Errorf("%s arity = %d, want %d", tt.op, tt.op.Arity(), tt.arity)
		}
	}
}

func TestDelimiters(t *testing.T) {
	for _, r := range []rune{RuneOpen, RuneClose, RuneSpace} {
		if !IsDelimiter(r) {
			t.Errorf("%q should be a delimiter", r)
		}
	}
	if IsDelimiter('a') {
		t.Error("'a' is not a delimiter")
	}
	if !OPERATOR.IsTextual() || EXPRESSION.IsTextual() || POINTER.IsTextual() {
		t.Error("IsTextual disagrees with Text")
	}
}
