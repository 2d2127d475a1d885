// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package scanner

import (
	"errors"
	"fmt"

	"nickandperla.net/lit/internal/token"
)

// ErrUnbalanced is returned when a delimiter has no partner.
var ErrUnbalanced = errors.New("unbalanced delimiter")

// Normalize returns src with every line break and tab replaced by a space
// and one trailing space appended. Rune offsets are preserved.
func Normalize(src string) []rune {
	runes := []rune(src)
	out := make([]rune, len(runes)+1)
	for i, r := range runes {
		switch r {
		case '\n', '\r', '\t':
			out[i] = token.RuneSpace
		default:
			out[i] = r
		}
	}
	out[len(runes)] = token.RuneSpace
	return out
}

// MatchDelimiter returns the index of the close rune matching the open
// rune at runes[start], counting nesting depth.
func MatchDelimiter(runes []rune, start int, open, close rune) (int, error) {
	if start < 0 || start >= len(runes) || runes[start] != open {
		return 0, fmt.Errorf("offset %d is not '%c': %w", start, open, ErrUnbalanced)
	}
	depth := 0
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("'%c' at offset %d is never closed: %w", open, start, ErrUnbalanced)
}

// Position converts a rune offset in src to a 1-based line and column.
func Position(src string, offset int) (line, col int) {
	line, col = 1, 1
	i := 0
	for _, r := range src {
		if i == offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}
	return line, col
}
