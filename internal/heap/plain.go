// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package heap

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Plain is the set of fixed-size types a heap region can be read as.
type Plain interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool
}

// Bytes returns the native-endian raw representation of vals.
func Bytes[T Plain](vals ...T) []byte {
	out, err := binary.Append(nil, binary.NativeEndian, vals)
	if err != nil {
		// Plain types always have a fixed size.
		panic(err)
	}
	return out
}

// InsertAs writes vals to the heap by their raw bit representation.
func InsertAs[T Plain](h *ByteHeap, vals ...T) (Handle, error) {
	return h.Insert(Bytes(vals...))
}

// ReadAs reinterprets the bytes covered by ptr as a slice of T.
func ReadAs[T Plain](h *ByteHeap, ptr Handle) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if ptr.Length%uint32(size) != 0 {
		return nil, fmt.Errorf("read %s as %d-byte elements: %w", ptr, size, ErrMisaligned)
	}
	raw, err := h.View(ptr)
	if err != nil {
		return nil, err
	}
	out := make([]T, int(ptr.Length)/size)
	if err := binary.Read(bytes.NewReader(raw), binary.NativeEndian, out); err != nil {
		return nil, fmt.Errorf("read %s: %w", ptr, err)
	}
	return out, nil
}
