// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"nickandperla.net/lit/internal/heap"
)

// Built-in type ids.
const (
	KindI32  ID = "i32"
	KindI64  ID = "i64"
	KindU32  ID = "u32"
	KindF32  ID = "f32"
	KindF64  ID = "f64"
	KindBool ID = "bool"
)

// Recognizer priorities of the built-in kinds.
const (
	PriorityBool = 60
	PriorityI32  = 50
	PriorityI64  = 40
	PriorityU32  = 35
	PriorityF32  = 30
	PriorityF64  = 20
)

type integer interface {
	~int32 | ~int64 | ~uint32
}

type float interface {
	~float32 | ~float64
}

type number interface {
	integer | float
}

// Scalar is a value of one of the built-in numeric kinds.
type Scalar[T number] struct {
	Of ID
	V  T
}

func (s Scalar[T]) Kind() ID { return s.Of }

// Float64 returns the value converted to float64.
func (s Scalar[T]) Float64() float64 { return float64(s.V) }

// Int64 returns the value converted to int64.
func (s Scalar[T]) Int64() int64 { return int64(s.V) }

// IsFloat reports whether the scalar holds a floating point value.
func (s Scalar[T]) IsFloat() bool {
	switch any(s.V).(type) {
	case float32, float64:
		return true
	}
	return false
}

// Numeric is implemented by every Scalar.
type Numeric interface {
	Value
	Float64() float64
	Int64() int64
	IsFloat() bool
}

// Int32 returns an i32 value.
func Int32(v int32) Scalar[int32] { return Scalar[int32]{Of: KindI32, V: v} }

// Int64 returns an i64 value.
func Int64(v int64) Scalar[int64] { return Scalar[int64]{Of: KindI64, V: v} }

// Uint32 returns a u32 value.
func Uint32(v uint32) Scalar[uint32] { return Scalar[uint32]{Of: KindU32, V: v} }

// Float32 returns an f32 value.
func Float32(v float32) Scalar[float32] { return Scalar[float32]{Of: KindF32, V: v} }

// Float64 returns an f64 value.
func Float64(v float64) Scalar[float64] { return Scalar[float64]{Of: KindF64, V: v} }

// Bool is a value of the bool kind.
type Bool bool

func (b Bool) Kind() ID { return KindBool }

type scalarKind[T number] struct {
	id     ID
	parse  func(text string) (T, error)
	format func(v T) string
	exact  func(text string) bool // Optional, rejects text the parser accepts but the kind does not claim
}

func (k scalarKind[T]) ID() ID { return k.id }

func (k scalarKind[T]) Match(text string) bool {
	if k.parse == nil || !strings.ContainsAny(text, "0123456789") {
		return false
	}
	if _, err := k.parse(text); err != nil {
		return false
	}
	return k.exact == nil || k.exact(text)
}

func (k scalarKind[T]) Parse(text string) (Value, error) {
	v, err := k.parse(text)
	if err != nil {
		return nil, err
	}
	return Scalar[T]{Of: k.id, V: v}, nil
}

func (k scalarKind[T]) scalar(v Value) (Scalar[T], error) {
	s, ok := v.(Scalar[T])
	if !ok || s.Of != k.id {
		return Scalar[T]{}, fmt.Errorf("value %v is not %s", v, k.id)
	}
	return s, nil
}

func (k scalarKind[T]) Format(v Value) (string, error) {
	s, err := k.scalar(v)
	if err != nil {
		return "", err
	}
	return k.format(s.V), nil
}

func (k scalarKind[T]) Encode(v Value) ([]byte, error) {
	s, err := k.scalar(v)
	if err != nil {
		return nil, err
	}
	return heap.Bytes(s.V), nil
}

func (k scalarKind[T]) Decode(raw []byte) (Value, error) {
	var v T
	if len(raw) != binary.Size(v) {
		return nil, fmt.Errorf("decode %s: expected %d bytes, got %d", k.id, binary.Size(v), len(raw))
	}
	if err := binary.Read(bytes.NewReader(raw), binary.NativeEndian, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k.id, err)
	}
	return Scalar[T]{Of: k.id, V: v}, nil
}

func parseInt[T ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(text string) (T, error) {
		n, err := strconv.ParseInt(text, 10, bits)
		return T(n), err
	}
}

// parseUint accepts digits with an optional unsigned suffix.
func parseUint[T ~uint32](bits int) func(string) (T, error) {
	return func(text string) (T, error) {
		n, err := strconv.ParseUint(strings.TrimSuffix(text, unsignedSuffix), 10, bits)
		return T(n), err
	}
}

// unsignedSuffix marks a word as u32. Bare digits classify as signed.
const unsignedSuffix = "u"

func hasUnsignedSuffix(text string) bool { return strings.HasSuffix(text, unsignedSuffix) }

func parseFloat[T float](bits int) func(string) (T, error) {
	return func(text string) (T, error) {
		f, err := strconv.ParseFloat(text, bits)
		return T(f), err
	}
}

func fitsFloat32(text string) bool {
	f, err := strconv.ParseFloat(text, 64)
	return err == nil && float64(float32(f)) == f
}

func formatInt[T ~int32 | ~int64](v T) string { return strconv.FormatInt(int64(v), 10) }
func formatUint[T ~uint32](v T) string       { return strconv.FormatUint(uint64(v), 10) + unsignedSuffix }

func formatFloat[T float](bits int) func(T) string {
	return func(v T) string { return strconv.FormatFloat(float64(v), 'g', -1, bits) }
}

// I32 is the i32 kind.
var I32 Kind = scalarKind[int32]{id: KindI32, parse: parseInt[int32](32), format: formatInt[int32]}

// I64 is the i64 kind.
var I64 Kind = scalarKind[int64]{id: KindI64, parse: parseInt[int64](64), format: formatInt[int64]}

// U32 is the u32 kind. Its recognizer needs the "u" suffix ("7u"), which
// formatting writes back so results classify the same way.
var U32 Kind = scalarKind[uint32]{id: KindU32, parse: parseUint[uint32](32), format: formatUint[uint32], exact: hasUnsignedSuffix}

// F32 is the f32 kind.
// Its recognizer only accepts text an f32 holds without rounding, so
// "2.5" is f32 and "3.14" falls through to f64.
var F32 Kind = scalarKind[float32]{id: KindF32, parse: parseFloat[float32](32), format: formatFloat[float32](32), exact: fitsFloat32}

// F64 is the f64 kind.
var F64 Kind = scalarKind[float64]{id: KindF64, parse: parseFloat[float64](64), format: formatFloat[float64](64)}

type boolKind struct{}

// BoolKind is the bool kind. Only the words "true" and "false" match.
var BoolKind Kind = boolKind{}

func (boolKind) ID() ID { return KindBool }

func (boolKind) Match(text string) bool { return text == "true" || text == "false" }

func (boolKind) Parse(text string) (Value, error) {
	switch text {
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	return nil, fmt.Errorf("'%s' is not true or false", text)
}

func (boolKind) Format(v Value) (string, error) {
	b, ok := v.(Bool)
	if !ok {
		return "", fmt.Errorf("value %v is not bool", v)
	}
	return strconv.FormatBool(bool(b)), nil
}

func (boolKind) Encode(v Value) ([]byte, error) {
	b, ok := v.(Bool)
	if !ok {
		return nil, fmt.Errorf("value %v is not bool", v)
	}
	return heap.Bytes(bool(b)), nil
}

func (boolKind) Decode(raw []byte) (Value, error) {
	if len(raw) != 1 {
		return nil, fmt.Errorf("decode bool: expected 1 byte, got %d", len(raw))
	}
	return Bool(raw[0] != 0), nil
}

// RegisterBuiltins adds the built-in kinds to t.
func RegisterBuiltins(t *TypeTable) {
	t.Register(BoolKind, PriorityBool)
	t.Register(I32, PriorityI32)
	t.Register(I64, PriorityI64)
	t.Register(U32, PriorityU32)
	t.Register(F32, PriorityF32)
	t.Register(F64, PriorityF64)
}

// Builtin returns a type table holding the built-in kinds.
func Builtin() *TypeTable {
	t := NewTypeTable()
	RegisterBuiltins(t)
	return t
}
