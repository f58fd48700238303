// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the souschef TUI.

The chat package implements the full-screen conversation interface using
the Bubble Tea framework. It drives one responder session: typed or
dictated submissions go out, settled replies come back, and the
transcript in between is always the single source of truth for what is
on screen.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model:
  - A two-state submission machine (idle, busy) that accepts exactly
    one in-flight request at a time
  - Text input with character limit and paste support
  - Viewport scrolling over the rendered transcript
  - Push-to-talk capture state for the speech recognizer
  - Live configuration reload wiring

## Messages (messages.go)

Typed Bubble Tea messages and the commands that produce them, one per
asynchronous concern: settled replies, speech capture results, and
configuration reloads.

## View Rendering (view.go)

Rendering logic for the complete interface:
  - Header with model name plus mock and listening badges
  - Right-aligned user bubbles and markdown-rendered assistant turns
  - Input area with capture indicator and character count
  - Status bar carrying the self-expiring status line and shortcuts

## Key Bindings (keys.go)

The key map: enter submits, ctrl+s starts a voice capture, esc cancels
one, and the usual viewport scrolling chords. Plain letters stay free
for typing. The capture binding is disabled, and hidden from every
hint, when no capture command is configured.

# Usage

Create a chat model over a theme and session, then run it:

	theme := styles.NewTheme(caps)
	m := chat.New(theme, chat.Session{
		Responder:  responder,
		Recognizer: recognizer,
		Config:     cfg,
		Caps:       caps,
		Logger:     logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}

# State Guarantees

The model never writes to the transcript; the responder owns all
appends. A submission accepted while idle always produces exactly one
ReplyMsg, and the busy state ends only when that message arrives.
Submissions attempted while busy are dropped with a status warning and
leave the transcript untouched.
*/
package chat
