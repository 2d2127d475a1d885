// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package heap implements the append-only byte arena that backs committed
// lit values.
//
// Bytes written to a ByteHeap are never moved in the logical address space,
// freed or compacted. Every Handle issued by Insert stays valid for the
// lifetime of the heap.
package heap

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// DefaultSize is the initial capacity of a heap created with size <= 0.
const DefaultSize = 64 * 1024

// Layout names the byte layout of heap contents: packed 32-bit handles and
// little-endian scalars. Snapshots taken under another layout are refused.
const Layout = "packed32-le"

// maxSize is the largest heap a 32-bit handle can address.
var maxSize uint64 = math.MaxUint32

var (
	// ErrExhausted is returned when an insert does not fit in the heap.
	ErrExhausted = errors.New("heap exhausted")
	// ErrOutOfBounds is returned when a handle reaches past the high-water mark.
	ErrOutOfBounds = errors.New("handle out of bounds")
	// ErrMisaligned is returned when a handle's length is not a multiple of
	// the requested element size.
	ErrMisaligned = errors.New("handle length not a multiple of element size")
	// ErrNotEmpty is returned by Restore on a heap that already holds data.
	ErrNotEmpty = errors.New("heap not empty")
)

// Handle references a region previously written to a ByteHeap.
type Handle struct {
	Offset uint32
	Length uint32
}

// Pack encodes the handle as offset<<32 | length.
func (h Handle) Pack() uint64 {
	return uint64(h.Offset)<<32 | uint64(h.Length)
}

// Unpack decodes a handle packed with Handle.Pack.
func Unpack(p uint64) Handle {
	return Handle{Offset: uint32(p >> 32), Length: uint32(p)}
}

// End returns the offset one past the last byte of the handle.
func (h Handle) End() uint64 {
	return uint64(h.Offset) + uint64(h.Length)
}

func (h Handle) String() string {
	return fmt.Sprintf("@%d+%d", h.Offset, h.Length)
}

// ByteHeap is an append-only byte buffer with a high-water mark.
type ByteHeap struct {
	mu    sync.RWMutex
	bytes []byte
	mark  int
	fixed bool
}

// Option configures a ByteHeap.
type Option func(*ByteHeap)

// WithFixedSize makes the heap fail with ErrExhausted instead of growing.
func WithFixedSize() Option {
	return func(h *ByteHeap) { h.fixed = true }
}

// New creates a zero-filled heap with the given initial capacity.
func New(size int, opts ...Option) *ByteHeap {
	if size <= 0 {
		size = DefaultSize
	}
	h := &ByteHeap{bytes: make([]byte, size)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Insert copies raw to the high-water mark and returns a handle covering it.
func (h *ByteHeap) Insert(raw []byte) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	end := h.mark + len(raw)
	if uint64(end) > maxSize {
		return Handle{}, fmt.Errorf("insert %d bytes at %d: %w", len(raw), h.mark, ErrExhausted)
	}
	if end > len(h.bytes) {
		if h.fixed {
			return Handle{}, fmt.Errorf("insert %d bytes at %d (capacity %d): %w",
				len(raw), h.mark, len(h.bytes), ErrExhausted)
		}
		h.grow(end)
	}

	ptr := Handle{Offset: uint32(h.mark), Length: uint32(len(raw))}
	copy(h.bytes[h.mark:end], raw)
	h.mark = end
	return ptr, nil
}

// grow reallocates so that at least need bytes fit (caller must hold lock).
func (h *ByteHeap) grow(need int) {
	size := len(h.bytes) * 2
	if size < need {
		size = need
	}
	if uint64(size) > maxSize {
		size = int(maxSize)
	}
	next := make([]byte, size)
	copy(next, h.bytes[:h.mark])
	h.bytes = next
}

// View returns the bytes covered by a handle. The slice aliases heap
// storage and must not be modified.
func (h *ByteHeap) View(ptr Handle) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if ptr.End() > uint64(h.mark) {
		return nil, fmt.Errorf("view %s (mark %d): %w", ptr, h.mark, ErrOutOfBounds)
	}
	return h.bytes[ptr.Offset:ptr.End():ptr.End()], nil
}

// Len returns the high-water mark.
func (h *ByteHeap) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mark
}

// Cap returns the current capacity.
func (h *ByteHeap) Cap() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bytes)
}

// Fixed reports whether the heap refuses to grow.
func (h *ByteHeap) Fixed() bool {
	return h.fixed
}

// Occupied returns a copy of every byte below the high-water mark.
func (h *ByteHeap) Occupied() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]byte, h.mark)
	copy(out, h.bytes[:h.mark])
	return out
}

// Restore loads a snapshot taken with Occupied into an empty heap.
// Handles issued by the snapshotted heap are valid against this one.
func (h *ByteHeap) Restore(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mark != 0 {
		return ErrNotEmpty
	}
	if len(data) > len(h.bytes) {
		if h.fixed {
			return fmt.Errorf("restore %d bytes (capacity %d): %w", len(data), len(h.bytes), ErrExhausted)
		}
		h.grow(len(data))
	}
	copy(h.bytes, data)
	h.mark = len(data)
	return nil
}
