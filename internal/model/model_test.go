// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data structures.
package model

import (
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// TURN TESTS
// =============================================================================

func TestNewTurn(t *testing.T) {
	turn := NewTurn(RoleUser, "hello")

	if turn.Role != RoleUser {
		t.Errorf("Role = %q, want %q", turn.Role, RoleUser)
	}
	if turn.Content != "hello" {
		t.Errorf("Content = %q, want %q", turn.Content, "hello")
	}
	if !strings.HasPrefix(turn.ID, "turn_") {
		t.Errorf("ID = %q, want turn_ prefix", turn.ID)
	}
	if turn.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestNewTurn_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		turn := NewTurn(RoleUser, "x")
		if seen[turn.ID] {
			t.Fatalf("duplicate turn ID %q", turn.ID)
		}
		seen[turn.ID] = true
	}
}

func TestRoleDisplayName(t *testing.T) {
	testCases := []struct {
		role     Role
		expected string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "SousChef"},
		{RoleSystem, "System"},
		{Role("other"), "other"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role), func(t *testing.T) {
			if got := tc.role.DisplayName(); got != tc.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestTurnPreview(t *testing.T) {
	turn := NewTurn(RoleUser, "a fairly long message that needs truncation")
	preview := turn.Preview(10)
	if len([]rune(preview)) > 10 {
		t.Errorf("Preview exceeds max length: %q", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("Preview missing ellipsis: %q", preview)
	}

	short := NewTurn(RoleUser, "hi")
	if got := short.Preview(10); got != "hi" {
		t.Errorf("Preview of short content = %q, want %q", got, "hi")
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscriptAppend_Order(t *testing.T) {
	tr := NewTranscript()

	tr.Append(RoleUser, "first")
	tr.Append(RoleAssistant, "second")
	tr.Append(RoleUser, "third")

	turns := tr.All()
	if len(turns) != 3 {
		t.Fatalf("Len = %d, want 3", len(turns))
	}

	wantContent := []string{"first", "second", "third"}
	wantRole := []Role{RoleUser, RoleAssistant, RoleUser}
	for i, turn := range turns {
		if turn.Content != wantContent[i] {
			t.Errorf("turn[%d].Content = %q, want %q", i, turn.Content, wantContent[i])
		}
		if turn.Role != wantRole[i] {
			t.Errorf("turn[%d].Role = %q, want %q", i, turn.Role, wantRole[i])
		}
	}

	// Timestamps must be non-decreasing in insertion order.
	for i := 1; i < len(turns); i++ {
		if turns[i].CreatedAt.Before(turns[i-1].CreatedAt) {
			t.Errorf("turn[%d] created before turn[%d]", i, i-1)
		}
	}
}

func TestTranscriptAll_ReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "original")

	turns := tr.All()
	turns[0].Content = "mutated"

	fresh := tr.All()
	if fresh[0].Content != "original" {
		t.Error("All() exposed internal storage; mutation leaked")
	}
}

func TestTranscriptLast(t *testing.T) {
	tr := NewTranscript()

	if _, ok := tr.Last(); ok {
		t.Error("Last() on empty transcript reported a turn")
	}

	tr.Append(RoleUser, "one")
	tr.Append(RoleAssistant, "two")

	last, ok := tr.Last()
	if !ok {
		t.Fatal("Last() reported empty after appends")
	}
	if last.Content != "two" || last.Role != RoleAssistant {
		t.Errorf("Last() = %q/%q, want two/assistant", last.Content, last.Role)
	}
}

func TestTranscriptIsEmpty(t *testing.T) {
	tr := NewTranscript()
	if !tr.IsEmpty() {
		t.Error("new transcript not empty")
	}
	tr.Append(RoleUser, "x")
	if tr.IsEmpty() {
		t.Error("transcript empty after append")
	}
}

func TestTranscriptConcurrentAccess(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Append(RoleUser, "concurrent")
		}()
		go func() {
			defer wg.Done()
			_ = tr.All()
			_ = tr.Len()
		}()
	}
	wg.Wait()

	if tr.Len() != 10 {
		t.Errorf("Len = %d after 10 concurrent appends, want 10", tr.Len())
	}
}
