// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface, and the command creators that produce them. Messages are
// organized into the following categories:
//   - Submission: settled replies from the responder
//   - Speech: push-to-talk capture results
//   - Config: live configuration reloads
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/souschef/internal/assist"
	"github.com/jeranaias/souschef/internal/config"
	"github.com/jeranaias/souschef/internal/speech"
)

// =============================================================================
// SUBMISSION MESSAGES
// =============================================================================

// ReplyMsg delivers the settled result of one submission. Exactly one
// arrives for every accepted submission, whatever happened upstream;
// the busy state always ends here.
type ReplyMsg struct {
	Reply assist.Reply
	Err   error
}

// RespondCmd creates a command that runs one respond cycle. The
// responder appends the user turn immediately and the assistant turn
// when the reply settles, so the UI only has to re-render.
func RespondCmd(responder *assist.Responder, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reply, err := responder.Respond(ctx, text)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

// =============================================================================
// SPEECH MESSAGES
// =============================================================================

// SpeechResultMsg delivers the outcome of one capture attempt. On
// success Transcript is non-empty and goes into the input field; it is
// never submitted on the user's behalf.
type SpeechResultMsg struct {
	Transcript string
	Err        error
}

// CaptureSpeechCmd creates a command that records one utterance.
func CaptureSpeechCmd(recognizer *speech.Recognizer) tea.Cmd {
	return func() tea.Msg {
		transcript, err := recognizer.Capture(context.Background())
		return SpeechResultMsg{Transcript: transcript, Err: err}
	}
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg announces a validated configuration reload picked
// up from disk while the session is running.
type ConfigReloadedMsg struct {
	Config *config.Config
}
