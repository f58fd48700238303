// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the souschef TUI.
//
// This file implements the transient status line shown under the input.
// Statuses auto-dismiss without polling: each Set schedules exactly one
// expiry command stamped with a sequence number, and an expiry only
// clears the line while its sequence is still the live one. Setting a
// new status supersedes the old expiry instead of racing it.
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/souschef/internal/ui/styles"
	"github.com/jeranaias/souschef/internal/util"
)

// =============================================================================
// STATUS TYPES
// =============================================================================

// StatusKind represents the severity of a status message.
type StatusKind int

const (
	// StatusInfo is an informational status (blue)
	StatusInfo StatusKind = iota
	// StatusWarning is a warning status (saffron)
	StatusWarning
	// StatusError is an error status (paprika)
	StatusError
)

// InfoStatusDuration is the auto-dismiss duration for informational statuses.
const InfoStatusDuration = 4 * time.Second

// WarningStatusDuration is the auto-dismiss duration for warning statuses.
const WarningStatusDuration = 6 * time.Second

// ErrorStatusDuration is the auto-dismiss duration for error statuses (longer to read).
const ErrorStatusDuration = 8 * time.Second

// StatusExpireMsg asks the status line to clear the status identified by
// Seq. A stale Seq (superseded by a newer status) is ignored.
type StatusExpireMsg struct {
	Seq uint64
}

// =============================================================================
// STATUS LINE
// =============================================================================

// StatusLine holds at most one transient status message. It is owned by
// the update loop and is not safe for concurrent use; bubbletea delivers
// messages serially so none is needed.
type StatusLine struct {
	seq     uint64
	text    string
	kind    StatusKind
	visible bool
}

// NewStatusLine creates an empty status line.
func NewStatusLine() StatusLine {
	return StatusLine{}
}

// Set replaces the current status and returns the command that will
// expire it. Any expiry still in flight for an earlier status carries a
// stale sequence number and will be ignored when it lands.
func (s *StatusLine) Set(text string, kind StatusKind) tea.Cmd {
	s.seq++
	s.text = text
	s.kind = kind
	s.visible = true

	seq := s.seq
	return tea.Tick(durationFor(kind), func(time.Time) tea.Msg {
		return StatusExpireMsg{Seq: seq}
	})
}

// Info sets an informational status.
func (s *StatusLine) Info(text string) tea.Cmd {
	return s.Set(text, StatusInfo)
}

// Warn sets a warning status.
func (s *StatusLine) Warn(text string) tea.Cmd {
	return s.Set(text, StatusWarning)
}

// Error sets an error status.
func (s *StatusLine) Error(text string) tea.Cmd {
	return s.Set(text, StatusError)
}

// Expire clears the status line if msg still refers to the live status.
func (s *StatusLine) Expire(msg StatusExpireMsg) {
	if msg.Seq != s.seq {
		return
	}
	s.visible = false
	s.text = ""
}

// Clear dismisses the current status immediately. The pending expiry for
// it becomes a no-op against an already-empty line.
func (s *StatusLine) Clear() {
	s.visible = false
	s.text = ""
}

// Visible reports whether a status is currently shown.
func (s *StatusLine) Visible() bool {
	return s.visible
}

// Text returns the current status text, empty when nothing is shown.
func (s *StatusLine) Text() string {
	if !s.visible {
		return ""
	}
	return s.text
}

// Kind returns the severity of the current status.
func (s *StatusLine) Kind() StatusKind {
	return s.kind
}

// =============================================================================
// RENDERING
// =============================================================================

// Render draws the status line for the given theme and width. Returns
// the empty string when no status is visible.
func (s *StatusLine) Render(theme *styles.Theme, width int) string {
	if !s.visible || s.text == "" {
		return ""
	}

	var style = theme.StatusInfo
	var icon = styles.StatusIndicators.Info
	switch s.kind {
	case StatusWarning:
		style = theme.StatusWarn
		icon = styles.StatusIndicators.Warning
	case StatusError:
		style = theme.StatusError
		icon = styles.StatusIndicators.Error
	}

	line := icon + " " + s.text
	if width > 0 {
		line = util.TruncateWidth(line, width)
	}
	return style.Render(line)
}

// durationFor maps a status kind to its auto-dismiss duration.
func durationFor(kind StatusKind) time.Duration {
	switch kind {
	case StatusError:
		return ErrorStatusDuration
	case StatusWarning:
		return WarningStatusDuration
	default:
		return InfoStatusDuration
	}
}
