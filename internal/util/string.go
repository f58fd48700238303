// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the souschef application.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Rune-aware truncation preserves multi-byte characters.
// Display-width functions delegate to go-runewidth so CJK and fullwidth
// characters count as two terminal columns.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates a string to a maximum display width in terminal
// columns, appending "..." when room allows. Safe for CJK input.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads a string with spaces on the right to the given display
// width. Strings already at or beyond the width are returned unchanged.
func PadWidth(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// WrapWidth wraps text to a maximum display width, breaking at spaces
// where possible and mid-word when a single word exceeds the width.
// Existing newlines are preserved.
func WrapWidth(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}

		runes := []rune(line)
		for runewidth.StringWidth(string(runes)) > maxWidth {
			// Walk forward to the last rune that fits, then back to a space.
			breakPoint := 0
			width := 0
			for j, r := range runes {
				width += runewidth.RuneWidth(r)
				if width > maxWidth {
					break
				}
				breakPoint = j + 1
			}
			for j := breakPoint; j > 0; j-- {
				if runes[j-1] == ' ' {
					breakPoint = j
					break
				}
			}
			if breakPoint == 0 {
				breakPoint = 1
			}

			result.WriteString(strings.TrimRight(string(runes[:breakPoint]), " "))
			result.WriteString("\n")
			runes = []rune(strings.TrimLeft(string(runes[breakPoint:]), " "))
		}
		result.WriteString(string(runes))
	}
	return result.String()
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// RuneLen returns the number of runes in a string. Safer than len() for
// UTF-8 input.
func RuneLen(s string) int {
	return len([]rune(s))
}
