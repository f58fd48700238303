// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal output.
//
// The renderer is built once from terminal capabilities and a wrap
// width. When markdown styling is disabled or glamour fails to
// initialize, Render degrades to the original text so the chat never
// loses content to a presentation problem.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MinWrapWidth is the narrowest wrap glamour is asked for. Below this
// the output becomes unreadable anyway.
const MinWrapWidth = 20

// Markdown renders assistant replies for terminal display.
// The zero value passes text through unchanged.
type Markdown struct {
	tr    *glamour.TermRenderer
	width int
}

// New builds a markdown renderer wrapping at width. Styling follows the
// dark flag resolved at startup instead of re-probing the terminal.
// Pass enabled=false (markdown off, colors off) to get a plain-text
// pass-through.
func New(width int, dark, enabled bool) *Markdown {
	if !enabled {
		return &Markdown{}
	}

	if width < MinWrapWidth {
		width = MinWrapWidth
	}

	style := "light"
	if dark {
		style = "dark"
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		return &Markdown{}
	}

	return &Markdown{tr: tr, width: width}
}

// Enabled reports whether markdown styling is active.
func (m *Markdown) Enabled() bool {
	return m != nil && m.tr != nil
}

// Width returns the wrap width the renderer was built for, 0 when
// styling is off.
func (m *Markdown) Width() int {
	if !m.Enabled() {
		return 0
	}
	return m.width
}

// Render returns the styled form of content, or the original content
// when rendering is unavailable or fails.
func (m *Markdown) Render(content string) string {
	if !m.Enabled() {
		return content
	}

	rendered, err := m.tr.Render(content)
	if err != nil {
		return content
	}

	// Glamour pads output with blank lines that fight the viewport's
	// own spacing.
	return strings.Trim(rendered, "\n")
}
