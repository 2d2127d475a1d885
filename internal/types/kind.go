// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package types implements the lit runtime type registry.
//
// A Kind bundles everything the interpreter knows about one value type: how
// to recognize its literals, parse them, format values back to text, and
// convert values to and from the raw bytes stored in a heap.
package types

import "fmt"

// ID names a registered value type, e.g. "i32".
type ID string

// Value is a parsed value of a registered kind.
type Value interface {
	Kind() ID
}

// Kind is the behavior set of one registered value type.
type Kind interface {
	ID() ID
	// Match reports whether raw token text is a literal of this kind.
	Match(text string) bool
	Parse(text string) (Value, error)
	Format(v Value) (string, error)
	// Encode returns the heap-ready bytes of a value.
	Encode(v Value) ([]byte, error)
	Decode(raw []byte) (Value, error)
}

// Boxed carries a value of a kind registered through Funcs.
type Boxed struct {
	Of ID
	V  any
}

func (b Boxed) Kind() ID { return b.Of }

// Funcs adapts a set of functions to the Kind interface.
type Funcs struct {
	Name     ID
	MatchFn  func(text string) bool
	ParseFn  func(text string) (Value, error)
	FormatFn func(v Value) (string, error)
	EncodeFn func(v Value) ([]byte, error)
	DecodeFn func(raw []byte) (Value, error)
}

func (f Funcs) ID() ID { return f.Name }

func (f Funcs) Match(text string) bool {
	return f.MatchFn != nil && f.MatchFn(text)
}

func (f Funcs) Parse(text string) (Value, error) {
	if f.ParseFn == nil {
		return nil, fmt.Errorf("kind %s has no parser", f.Name)
	}
	return f.ParseFn(text)
}

func (f Funcs) Format(v Value) (string, error) {
	if f.FormatFn == nil {
		if b, ok := v.(Boxed); ok {
			return fmt.Sprint(b.V), nil
		}
		return fmt.Sprint(v), nil
	}
	return f.FormatFn(v)
}

func (f Funcs) Encode(v Value) ([]byte, error) {
	if f.EncodeFn == nil {
		return nil, fmt.Errorf("kind %s is not byteable", f.Name)
	}
	return f.EncodeFn(v)
}

func (f Funcs) Decode(raw []byte) (Value, error) {
	if f.DecodeFn == nil {
		return nil, fmt.Errorf("kind %s is not byteable", f.Name)
	}
	return f.DecodeFn(raw)
}
