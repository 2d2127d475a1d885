// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package types

import (
	"cmp"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDivideByZero is returned for integer division or remainder by zero.
	ErrDivideByZero = errors.New("division by zero")
	// ErrOverflow is returned when an integer result does not fit in i64.
	ErrOverflow = errors.New("integer overflow")
)

// Op is an arithmetic operator understood by Arith.
type Op rune

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'
	Rem Op = '%'
)

// applyInt64 is integer arithmetic that fails with ErrOverflow instead of
// wrapping.
func applyInt64(op Op, x, y int64) (int64, error) {
	switch op {
	case Add:
		r := x + y
		if (x > 0 && y > 0 && r < 0) || (x < 0 && y < 0 && r >= 0) {
			return 0, fmt.Errorf("%d + %d: %w", x, y, ErrOverflow)
		}
		return r, nil
	case Sub:
		r := x - y
		if (y > 0 && r > x) || (y < 0 && r < x) {
			return 0, fmt.Errorf("%d - %d: %w", x, y, ErrOverflow)
		}
		return r, nil
	case Mul:
		if x == 0 || y == 0 {
			return 0, nil
		}
		r := x * y
		if r/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return 0, fmt.Errorf("%d * %d: %w", x, y, ErrOverflow)
		}
		return r, nil
	case Div:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		if x == math.MinInt64 && y == -1 {
			return 0, fmt.Errorf("%d / %d: %w", x, y, ErrOverflow)
		}
		return x / y, nil
	case Rem:
		if y == 0 {
			return 0, ErrDivideByZero
		}
		return x % y, nil
	}
	return 0, fmt.Errorf("unknown operator '%c'", op)
}

func applyFloat[T float](op Op, x, y T) (T, error) {
	switch op {
	case Add:
		return x + y, nil
	case Sub:
		return x - y, nil
	case Mul:
		return x * y, nil
	case Div:
		return x / y, nil
	case Rem:
		return T(math.Mod(float64(x), float64(y))), nil
	}
	return 0, fmt.Errorf("unknown operator '%c'", op)
}

// sameNarrow computes in 64 bits and keeps the 32-bit kind only when the
// result fits it; otherwise the result is i64.
func sameNarrow[T int32 | uint32](op Op, x Scalar[T], b Value) (Value, bool, error) {
	y, ok := b.(Scalar[T])
	if !ok || y.Of != x.Of {
		return nil, false, nil
	}
	r, err := applyInt64(op, int64(x.V), int64(y.V))
	if err != nil {
		return nil, true, err
	}
	if int64(T(r)) == r {
		return Scalar[T]{Of: x.Of, V: T(r)}, true, nil
	}
	return Int64(r), true, nil
}

func sameInt64(op Op, x Scalar[int64], b Value) (Value, bool, error) {
	y, ok := b.(Scalar[int64])
	if !ok || y.Of != x.Of {
		return nil, false, nil
	}
	r, err := applyInt64(op, x.V, y.V)
	if err != nil {
		return nil, true, err
	}
	return Scalar[int64]{Of: x.Of, V: r}, true, nil
}

func sameFloat[T float](op Op, x Scalar[T], b Value) (Value, bool, error) {
	y, ok := b.(Scalar[T])
	if !ok || y.Of != x.Of {
		return nil, false, nil
	}
	r, err := applyFloat(op, x.V, y.V)
	return Scalar[T]{Of: x.Of, V: r}, true, err
}

// Arith applies op to two numeric values. Operands of the same kind keep
// it; mixed kinds promote to f64 if either is a float and to i64 otherwise.
// A 32-bit integer result that does not fit its kind is promoted to i64,
// and one that does not fit i64 fails with ErrOverflow.
func Arith(op Op, a, b Value) (Value, error) {
	var (
		r   Value
		ok  bool
		err error
	)
	switch x := a.(type) {
	case Scalar[int32]:
		r, ok, err = sameNarrow(op, x, b)
	case Scalar[int64]:
		r, ok, err = sameInt64(op, x, b)
	case Scalar[uint32]:
		r, ok, err = sameNarrow(op, x, b)
	case Scalar[float32]:
		r, ok, err = sameFloat(op, x, b)
	case Scalar[float64]:
		r, ok, err = sameFloat(op, x, b)
	}
	if ok {
		return r, err
	}

	na, nb, err := numerics(a, b)
	if err != nil {
		return nil, err
	}
	if na.IsFloat() || nb.IsFloat() {
		f, err := applyFloat(op, na.Float64(), nb.Float64())
		return Float64(f), err
	}
	n, err := applyInt64(op, na.Int64(), nb.Int64())
	if err != nil {
		return nil, err
	}
	return Int64(n), nil
}

func numerics(a, b Value) (Numeric, Numeric, error) {
	na, ok := a.(Numeric)
	if !ok {
		return nil, nil, fmt.Errorf("%v (%s) is not numeric", a, kindOf(a))
	}
	nb, ok := b.(Numeric)
	if !ok {
		return nil, nil, fmt.Errorf("%v (%s) is not numeric", b, kindOf(b))
	}
	return na, nb, nil
}

func kindOf(v Value) ID {
	if v == nil {
		return "nil"
	}
	return v.Kind()
}

// Compare orders two numeric values.
func Compare(a, b Value) (int, error) {
	na, nb, err := numerics(a, b)
	if err != nil {
		return 0, err
	}
	if na.IsFloat() || nb.IsFloat() {
		return cmp.Compare(na.Float64(), nb.Float64()), nil
	}
	return cmp.Compare(na.Int64(), nb.Int64()), nil
}

// Equal reports whether two values are equal. Numeric values of different
// kinds compare by magnitude; other values must share a kind and text.
func Equal(a, b Value) bool {
	if c, err := Compare(a, b); err == nil {
		return c == 0
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := a.(Bool); ok {
		y, ok := b.(Bool)
		return ok && x == y
	}
	return a.Kind() == b.Kind() && fmt.Sprint(a) == fmt.Sprint(b)
}

// Negate returns -v for a numeric value, keeping its kind.
func Negate(v Value) (Value, error) {
	switch x := v.(type) {
	case Scalar[int32]:
		if x.V == math.MinInt32 {
			return Int64(-int64(x.V)), nil
		}
		return Scalar[int32]{Of: x.Of, V: -x.V}, nil
	case Scalar[int64]:
		if x.V == math.MinInt64 {
			return nil, fmt.Errorf("-(%d): %w", x.V, ErrOverflow)
		}
		return Scalar[int64]{Of: x.Of, V: -x.V}, nil
	case Scalar[uint32]:
		return Int64(-int64(x.V)), nil
	case Scalar[float32]:
		return Scalar[float32]{Of: x.Of, V: -x.V}, nil
	case Scalar[float64]:
		return Scalar[float64]{Of: x.Of, V: -x.V}, nil
	}
	return nil, fmt.Errorf("%v (%s) is not numeric", v, kindOf(v))
}

// Abs returns |v| for a numeric value.
func Abs(v Value) (Value, error) {
	c, err := Compare(v, Int32(0))
	if err != nil {
		return nil, err
	}
	if c < 0 {
		return Negate(v)
	}
	return v, nil
}
