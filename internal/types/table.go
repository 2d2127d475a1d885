// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package types

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"nickandperla.net/lit/internal/expr"
	"nickandperla.net/lit/internal/heap"
)

var (
	// ErrNoMatch is returned when no recognizer rule matches a literal.
	ErrNoMatch = errors.New("no matching type")
	// ErrConversion is matched by every *ConversionError.
	ErrConversion = errors.New("type conversion failed")
	// ErrUnknownKind is returned for type ids that were never registered.
	ErrUnknownKind = errors.New("unknown type")
)

// ConversionError reports a literal that could not become a value of Kind.
type ConversionError struct {
	Literal string
	Kind    ID
	Err     error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot convert '%s' to %s", e.Literal, e.Kind)
	}
	return fmt.Sprintf("cannot convert '%s' to %s: %v", e.Literal, e.Kind, e.Err)
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }
func (e *ConversionError) Unwrap() error        { return e.Err }

type rule struct {
	kind     ID
	priority int
	seq      int
}

// TypeTable maps type ids to kinds and holds the ordered recognizer rules.
type TypeTable struct {
	mu    sync.RWMutex
	kinds map[ID]Kind
	rules []rule // Descending priority, then registration order
	seq   int
}

// NewTypeTable creates an empty type table.
func NewTypeTable() *TypeTable {
	return &TypeTable{kinds: make(map[ID]Kind)}
}

// Register adds a kind with the priority of its recognizer rule. Registering
// an id again replaces the previous kind and its rule.
func (t *TypeTable) Register(k Kind, priority int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := k.ID()
	if _, ok := t.kinds[id]; ok {
		kept := t.rules[:0]
		for _, r := range t.rules {
			if r.kind != id {
				kept = append(kept, r)
			}
		}
		t.rules = kept
	}
	t.kinds[id] = k
	t.seq++
	t.rules = append(t.rules, rule{kind: id, priority: priority, seq: t.seq})
	sort.SliceStable(t.rules, func(i, j int) bool {
		if t.rules[i].priority != t.rules[j].priority {
			return t.rules[i].priority > t.rules[j].priority
		}
		return t.rules[i].seq < t.rules[j].seq
	})
}

// Lookup returns the kind registered under id.
func (t *TypeTable) Lookup(id ID) (Kind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.kinds[id]
	return k, ok
}

// Kinds returns the registered ids in rule order.
func (t *TypeTable) Kinds() []ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]ID, len(t.rules))
	for i, r := range t.rules {
		ids[i] = r.kind
	}
	return ids
}

func (t *TypeTable) kind(id ID) (Kind, error) {
	k, ok := t.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownKind)
	}
	return k, nil
}

// Classify returns the id of the highest-priority kind matching text.
func (t *TypeTable) Classify(text string) (ID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.rules {
		if t.kinds[r.kind].Match(text) {
			return r.kind, nil
		}
	}
	return "", fmt.Errorf("no matching type pattern for literal '%s': %w", text, ErrNoMatch)
}

// ClassifyLiteral attaches a type id to a textual literal.
func (t *TypeTable) ClassifyLiteral(l expr.Literal) (expr.TypedWord, error) {
	text, err := expr.Text(l)
	if err != nil {
		return expr.TypedWord{}, err
	}
	id, err := t.Classify(text)
	if err != nil {
		return expr.TypedWord{}, err
	}
	return expr.TypedWord{Text: text, Kind: string(id)}, nil
}

// Parse converts a Word or TypedWord into a value of the requested kind.
func (t *TypeTable) Parse(l expr.Literal, id ID) (Value, error) {
	k, err := t.kind(id)
	if err != nil {
		return nil, err
	}
	var text string
	switch v := l.(type) {
	case expr.Word:
		text = v.Text
	case expr.TypedWord:
		text = v.Text
	default:
		desc := "<nil>"
		if l != nil {
			desc = l.String()
		}
		return nil, &ConversionError{Literal: desc, Kind: id}
	}
	val, err := k.Parse(text)
	if err != nil {
		return nil, &ConversionError{Literal: text, Kind: id, Err: err}
	}
	return val, nil
}

// Format returns the text of a value using its kind's serializer.
func (t *TypeTable) Format(v Value) (string, error) {
	if v == nil {
		return "", fmt.Errorf("format nil value: %w", ErrUnknownKind)
	}
	k, err := t.kind(v.Kind())
	if err != nil {
		return "", err
	}
	return k.Format(v)
}

// ToLiteral serializes a value back to a Word.
func (t *TypeTable) ToLiteral(v Value) (expr.Literal, error) {
	s, err := t.Format(v)
	if err != nil {
		return nil, err
	}
	return expr.Word{Text: s}, nil
}

// ToTyped serializes a value back to a TypedWord carrying its id.
func (t *TypeTable) ToTyped(v Value) (expr.TypedWord, error) {
	s, err := t.Format(v)
	if err != nil {
		return expr.TypedWord{}, err
	}
	return expr.TypedWord{Text: s, Kind: string(v.Kind())}, nil
}

// Byteable is a value together with its heap-ready bytes.
type Byteable struct {
	Value Value
	Raw   []byte
}

// AutoParse classifies a literal, parses it and encodes it. A TypedWord
// keeps the id it was classified as.
func (t *TypeTable) AutoParse(l expr.Literal) (Byteable, error) {
	var id ID
	if tw, ok := l.(expr.TypedWord); ok && tw.Kind != "" {
		id = ID(tw.Kind)
	} else {
		typed, err := t.ClassifyLiteral(l)
		if err != nil {
			return Byteable{}, err
		}
		id = ID(typed.Kind)
	}
	v, err := t.Parse(l, id)
	if err != nil {
		return Byteable{}, err
	}
	raw, err := t.Encode(v)
	if err != nil {
		return Byteable{}, err
	}
	return Byteable{Value: v, Raw: raw}, nil
}

// Encode converts a value to heap-ready bytes.
func (t *TypeTable) Encode(v Value) ([]byte, error) {
	k, err := t.kind(v.Kind())
	if err != nil {
		return nil, err
	}
	raw, err := k.Encode(v)
	if err != nil {
		return nil, &ConversionError{Literal: fmt.Sprint(v), Kind: v.Kind(), Err: err}
	}
	return raw, nil
}

// Decode reconstructs a value of kind id from raw bytes.
func (t *TypeTable) Decode(id ID, raw []byte) (Value, error) {
	k, err := t.kind(id)
	if err != nil {
		return nil, err
	}
	return k.Decode(raw)
}

// Commit encodes a value and inserts it into h.
func (t *TypeTable) Commit(h *heap.ByteHeap, v Value) (expr.Pointer, error) {
	raw, err := t.Encode(v)
	if err != nil {
		return expr.Pointer{}, err
	}
	ptr, err := h.Insert(raw)
	if err != nil {
		return expr.Pointer{}, err
	}
	return expr.NewPointer(ptr, string(v.Kind())), nil
}

// Materialize commits a Word or TypedWord to h. Pointers are returned as is.
func (t *TypeTable) Materialize(h *heap.ByteHeap, l expr.Literal) (expr.Pointer, error) {
	if p, ok := l.(expr.Pointer); ok {
		return p, nil
	}
	b, err := t.AutoParse(l)
	if err != nil {
		return expr.Pointer{}, err
	}
	ptr, err := h.Insert(b.Raw)
	if err != nil {
		return expr.Pointer{}, err
	}
	return expr.NewPointer(ptr, string(b.Value.Kind())), nil
}

// Resolve returns the value a literal denotes: Words are classified,
// TypedWords parsed as their kind and Pointers decoded from h.
func (t *TypeTable) Resolve(h *heap.ByteHeap, l expr.Literal) (Value, error) {
	switch v := l.(type) {
	case expr.Pointer:
		if h == nil {
			return nil, fmt.Errorf("resolve %s: no heap", v)
		}
		raw, err := h.View(v.Handle())
		if err != nil {
			return nil, err
		}
		return t.Decode(ID(v.Kind), raw)
	case expr.TypedWord:
		if v.Kind != "" {
			return t.Parse(v, ID(v.Kind))
		}
	}
	b, err := t.AutoParse(l)
	if err != nil {
		return nil, err
	}
	return b.Value, nil
}
