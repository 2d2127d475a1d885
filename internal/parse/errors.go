// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parse

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/lit/internal/scanner"
)

var (
	// ErrUnbalanced is returned for a '(' without ')' or a stray ')'.
	ErrUnbalanced = scanner.ErrUnbalanced
	// ErrTooDeep is returned when groups nest deeper than the builder allows.
	ErrTooDeep = errors.New("nesting too deep")
)

// Error is a parse failure at a source position. Line and Col are 1-based.
type Error struct {
	Offset int
	Line   int
	Col    int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(src string, offset int, err error, format string, args ...any) *Error {
	line, col := scanner.Position(src, offset)
	return &Error{
		Offset: offset,
		Line:   line,
		Col:    col,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// WrapWithSource renders a parse error as a snippet of src with a caret
// under the offending column. Other errors are returned unchanged.
func WrapWithSource(err error, src string) error {
	var pe *Error
	if !errors.As(err, &pe) {
		return err
	}
	return &snippetError{err: err, text: snippet(src, pe.Line, pe.Col, pe.Msg)}
}

type snippetError struct {
	err  error
	text string
}

func (e *snippetError) Error() string { return e.text }
func (e *snippetError) Unwrap() error { return e.err }

func snippet(src string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PARSE ERROR at %d:%d: %s\n\n", line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
