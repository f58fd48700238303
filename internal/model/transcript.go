// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data structures.
package model

import (
	"sync"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the append-only record of a session's conversation. Turns
// are never reordered, edited, or evicted; replay is always the full
// history in insertion order.
//
// The responder appends from a command goroutine while the view reads from
// the program loop, so access is guarded by a RWMutex.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a turn and returns it. Insertion order is chronological
// order.
func (tr *Transcript) Append(role Role, content string) Turn {
	turn := NewTurn(role, content)
	tr.mu.Lock()
	tr.turns = append(tr.turns, turn)
	tr.mu.Unlock()
	return turn
}

// All returns a copy of every turn in insertion order. The copy keeps
// callers from observing appends mid-iteration.
func (tr *Transcript) All() []Turn {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	out := make([]Turn, len(tr.turns))
	copy(out, tr.turns)
	return out
}

// Len returns the number of turns.
func (tr *Transcript) Len() int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return len(tr.turns)
}

// Last returns the most recent turn, or false when the transcript is
// empty.
func (tr *Transcript) Last() (Turn, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	if len(tr.turns) == 0 {
		return Turn{}, false
	}
	return tr.turns[len(tr.turns)-1], true
}

// IsEmpty reports whether the transcript holds no turns.
func (tr *Transcript) IsEmpty() bool {
	return tr.Len() == 0
}
