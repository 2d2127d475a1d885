// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package store persists snapshots of a lit runtime: the heap bytes and
// the symbol bindings that refer into them.
package store

import (
	"errors"
	"fmt"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/token"
)

// ErrCorrupt is returned for bindings that cannot be turned back into a literal.
var ErrCorrupt = errors.New("corrupt binding")

// LayoutKey is the metadata key holding the heap layout of the saved snapshot.
const LayoutKey = "heap_layout"

// Store is the interface for snapshot persistence.
type Store interface {
	// Get retrieves a binding by name. ok is false if it does not exist.
	Get(name string) (b Binding, ok bool, err error)
	// Delete removes a binding by name.
	Delete(name string) error
	// Save replaces the stored snapshot.
	Save(s Snapshot) error
	// Load returns the stored snapshot. ok is false if none was saved.
	Load() (s Snapshot, ok bool, err error)
	// Close releases resources.
	Close() error
}

// MetadataStore extends Store with metadata operations. Snapshots record
// the heap layout under LayoutKey.
type MetadataStore interface {
	Store
	GetMetadata(key string) (string, error)
	SetMetadata(key, value string) error
}

// Snapshot is the occupied heap plus every symbol binding.
type Snapshot struct {
	Heap     []byte
	Bindings []Binding
}

// Binding is one symbol as persisted. Handle is the packed heap address
// of Pointer values. Expression values keep their items as nested
// bindings with empty names; Text holds their source form for display.
type Binding struct {
	Name   string    `json:"name,omitempty"`
	Tag    token.Tag `json:"tag"`
	Text   string    `json:"text,omitempty"`
	Kind   string    `json:"kind,omitempty"`
	Handle uint64    `json:"handle,omitempty"`
	Ref    string    `json:"ref,omitempty"`
	Items  []Binding `json:"items,omitempty"`
}

// FromLiteral flattens a bound literal.
func FromLiteral(name string, l expr.Literal) (Binding, error) {
	b := Binding{Name: name}
	switch v := l.(type) {
	case expr.Word:
		b.Tag, b.Text = token.WORD, v.Text
	case expr.TypedWord:
		b.Tag, b.Text, b.Kind = token.TYPED_WORD, v.Text, v.Kind
	case expr.Operator:
		b.Tag, b.Text, b.Kind = token.OPERATOR, v.Op.Name, v.Op.Kind.String()
	case expr.Pointer:
		b.Tag, b.Kind, b.Handle = token.POINTER, v.Kind, v.Addr
		b.Text = v.String()
	case expr.Expression:
		b.Tag, b.Text, b.Ref = token.EXPRESSION, v.String(), v.Ref
		for i, item := range v.Items {
			sub, err := FromLiteral("", item)
			if err != nil {
				return Binding{}, fmt.Errorf("binding %s item %d: %w", name, i, err)
			}
			b.Items = append(b.Items, sub)
		}
	default:
		return Binding{}, fmt.Errorf("binding %s: %w", name, expr.ErrReference)
	}
	return b, nil
}

// Literal rebuilds the bound literal.
func (b Binding) Literal() (expr.Literal, error) {
	switch b.Tag {
	case token.WORD:
		return expr.Word{Text: b.Text}, nil
	case token.TYPED_WORD:
		return expr.TypedWord{Text: b.Text, Kind: b.Kind}, nil
	case token.OPERATOR:
		kind, ok := token.ParseOperand(b.Kind)
		if !ok {
			return nil, fmt.Errorf("binding %s: operand kind %q: %w", b.Name, b.Kind, ErrCorrupt)
		}
		return expr.Operator{Op: expr.Operand{Kind: kind, Name: b.Text}}, nil
	case token.POINTER:
		return expr.Pointer{Addr: b.Handle, Kind: b.Kind}, nil
	case token.EXPRESSION:
		e := expr.Expression{Ref: b.Ref}
		for _, sub := range b.Items {
			l, err := sub.Literal()
			if err != nil {
				return nil, fmt.Errorf("binding %s: %w", b.Name, err)
			}
			e.Items = append(e.Items, l)
		}
		return e, nil
	}
	return nil, fmt.Errorf("binding %s: tag %d: %w", b.Name, b.Tag, ErrCorrupt)
}
