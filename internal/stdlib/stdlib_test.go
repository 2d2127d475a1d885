// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package stdlib

import (
	"errors"
	"testing"

	"nickandperla.net/lit/internal/eval"
	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
	"nickandperla.net/lit/internal/optable"
	"nickandperla.net/lit/internal/parse"
	"nickandperla.net/lit/internal/symbol"
	"nickandperla.net/lit/internal/types"
)

type env struct {
	ops   *optable.OpTable
	types *types.TypeTable
	heap  *heap.ByteHeap
	refs  *symbol.Table
}

func newEnv() *env {
	e := &env{
		ops:   optable.New(),
		types: types.Builtin(),
		heap:  heap.New(256),
		refs:  symbol.New(),
	}
	Register(e.ops, e.types, e.heap)
	return e
}

func (e *env) eval(t *testing.T, src string, mode parse.AutoType) (expr.Literal, error) {
	t.Helper()
	tree, err := parse.New(e.ops,
		parse.WithSymbols(e.refs),
		parse.WithTypes(e.types),
		parse.WithHeap(e.heap),
		parse.WithAutoType(mode),
	).Build(src)
	if err != nil {
		t.Fatalf("Build(%q) error: %v", src, err)
	}
	return eval.New(e.ops, eval.WithSymbols(e.refs)).Reduce(tree)
}

func TestWordArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"( 3 + 4 )", "7"},
		{"10 - 4", "6"},
		{"6 * 7", "42"},
		{"7 / 2", "3"},
		{"7 % 4", "3"},
		{"1.5 + 1", "2.5"},
		{"2 * ( 3 + 4 )", "14"},
		{"( PI )", "3.141592653589793"},
		{"2147483647 + 1", "2147483648"},
		{"65536 * 65536", "4294967296"},
		{"7u + 1u", "8u"},
		{"1u - 2u", "-1"},
		{"neg ( -2147483648 )", "2147483648"},
		{"3 < 4", "true"},
		{"3 > 4", "false"},
		{"2 == 2.0", "true"},
		{"sum ( 1 2 3 4 )", "10"},
		{"sum ( )", "0"},
		{"min ( 5 2 9 )", "2"},
		{"max ( 5 2 9 )", "9"},
		{"neg ( 3 )", "-3"},
		{"abs ( neg ( 3 ) )", "3"},
		{"kind ( 7 )", "i32"},
		{"kind ( 2.5 )", "f32"},
		{"kind ( TRUE )", "bool"},
		{"x = 5", "5"},
	}
	for _, tt := range tests {
		e := newEnv()
		got, err := e.eval(t, tt.src, parse.AutoOff)
		if err != nil {
			t.Fatalf("eval(%q) error: %v", tt.src, err)
		}
		w, ok := got.(expr.Word)
		if !ok {
			t.Fatalf("eval(%q) = %s, want a Word", tt.src, expr.Detail(got))
		}
		if w.Text != tt.want {
			t.Errorf("eval(%q) = %s, want %s", tt.src, w.Text, tt.want)
		}
	}
}

func TestRepresentationPreserved(t *testing.T) {
	e := newEnv()

	got, err := e.eval(t, "3 + 4", parse.AutoClassify)
	if err != nil {
		t.Fatal(err)
	}
	tw, ok := got.(expr.TypedWord)
	if !ok || tw.Text != "7" || tw.Kind != string(types.KindI32) {
		t.Fatalf("classified 3 + 4 = %s, want i32 TypedWord 7", expr.Detail(got))
	}

	got, err = e.eval(t, "3 + 4", parse.AutoCommit)
	if err != nil {
		t.Fatal(err)
	}
	ptr, ok := got.(expr.Pointer)
	if !ok {
		t.Fatalf("committed 3 + 4 = %s, want a Pointer", expr.Detail(got))
	}
	v, err := e.types.Resolve(e.heap, ptr)
	if err != nil {
		t.Fatal(err)
	}
	if v != types.Int32(7) {
		t.Errorf("committed result = %#v, want i32 7", v)
	}
	// 3, 4 and the result.
	if e.heap.Len() != 12 {
		t.Errorf("heap length = %d, want 12", e.heap.Len())
	}
}

func TestCommit(t *testing.T) {
	e := newEnv()
	got, err := e.eval(t, "commit ( 2.5 )", parse.AutoOff)
	if err != nil {
		t.Fatal(err)
	}
	ptr, ok := got.(expr.Pointer)
	if !ok || ptr.Kind != string(types.KindF32) {
		t.Fatalf("commit = %s, want an f32 Pointer", expr.Detail(got))
	}
	vals, err := heap.ReadAs[float32](e.heap, ptr.Handle())
	if err != nil || len(vals) != 1 || vals[0] != 2.5 {
		t.Errorf("ReadAs = %v, %v", vals, err)
	}

	got, err = e.eval(t, "kind ( commit ( 9 ) )", parse.AutoOff)
	if err != nil || got.String() != "i32" {
		t.Errorf("kind of committed 9 = %v, %v", got, err)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"1 / 0", types.ErrDivideByZero},
		{"9223372036854775807 + 1", types.ErrOverflow},
		{"neg ( 1 2 )", ErrArity},
		{"min ( )", ErrArity},
		{"a + 1", types.ErrNoMatch},
		{"kind ( abc )", types.ErrNoMatch},
	}
	for _, tt := range tests {
		_, err := newEnv().eval(t, tt.src, parse.AutoOff)
		if !errors.Is(err, tt.want) {
			t.Errorf("eval(%q) error = %v, want %v", tt.src, err, tt.want)
		}
		var oe *eval.OperatorError
		if !errors.As(err, &oe) {
			t.Errorf("eval(%q) error %v is not an OperatorError", tt.src, err)
		}
	}
}

func TestPrelude(t *testing.T) {
	e := newEnv()
	if _, err := e.eval(t, Prelude, parse.AutoOff); err != nil {
		t.Fatalf("prelude: %v", err)
	}
	tau, ok := e.refs.Get("TAU")
	if !ok {
		t.Fatal("prelude did not bind TAU")
	}
	if tau.String() != "6.283185307179586" {
		t.Errorf("TAU = %s", tau)
	}
	got, err := e.eval(t, "TAU / 2", parse.AutoOff)
	if err != nil || got.String() != "3.141592653589793" {
		t.Errorf("TAU / 2 = %v, %v", got, err)
	}
}
