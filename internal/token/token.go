// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines lit delimiter runes, operand kinds and literal tags.
package token

// Delimiter runes recognized by the tree builder.
const (
	RuneOpen  = '(' // Opens a group
	RuneClose = ')' // Closes a group
	RuneSpace = ' ' // Word separator
)

// IsDelimiter returns true if the rune ends the pending word.
func IsDelimiter(r rune) bool {
	switch r {
	case RuneOpen, RuneClose, RuneSpace:
		return true
	}
	return false
}

// Operand is the kind of a registered operator.
type Operand int

const (
	BINARY     Operand = iota // left op right
	DROPIN                    // op, expands to a fixed literal
	FUNCTION                  // op ( args )
	ASSIGNMENT                // name op value
)

// String returns the string representation of an operand kind.
func (o Operand) String() string {
	switch o {
	case BINARY:
		return "BINARY"
	case DROPIN:
		return "DROPIN"
	case FUNCTION:
		return "FUNCTION"
	case ASSIGNMENT:
		return "ASSIGNMENT"
	}
	return "UNKNOWN"
}

// ParseOperand parses the string form of an operand kind.
func ParseOperand(s string) (Operand, bool) {
	switch s {
	case "BINARY":
		return BINARY, true
	case "DROPIN":
		return DROPIN, true
	case "FUNCTION":
		return FUNCTION, true
	case "ASSIGNMENT":
		return ASSIGNMENT, true
	}
	return BINARY, false
}

// Arity returns the number of sibling literals the operand consumes.
func (o Operand) Arity() int {
	switch o {
	case BINARY, ASSIGNMENT:
		return 2
	case FUNCTION:
		return 1
	}
	return 0
}

// Tag identifies a Literal variant.
type Tag int

const (
	WORD Tag = iota
	TYPED_WORD
	OPERATOR
	EXPRESSION
	POINTER
)

// String returns the string representation of a tag.
func (t Tag) String() string {
	switch t {
	case WORD:
		return "WORD"
	case TYPED_WORD:
		return "TYPED_WORD"
	case OPERATOR:
		return "OPERATOR"
	case EXPRESSION:
		return "EXPRESSION"
	case POINTER:
		return "POINTER"
	}
	return "UNKNOWN"
}

// ParseTag parses the string form of a tag.
func ParseTag(s string) (Tag, bool) {
	switch s {
	case "WORD":
		return WORD, true
	case "TYPED_WORD":
		return TYPED_WORD, true
	case "OPERATOR":
		return OPERATOR, true
	case "EXPRESSION":
		return EXPRESSION, true
	case "POINTER":
		return POINTER, true
	}
	return WORD, false
}

// IsTextual returns true if literals with this tag carry reference text.
func (t Tag) IsTextual() bool {
	switch t {
	case WORD, TYPED_WORD, OPERATOR:
		return true
	}
	return false
}
