// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline provides the local response path used when no API
// credential is configured or a live request fails.
package offline

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// CANNED TEMPLATES
// =============================================================================

// The synthesizer is not a language model. It picks one of three fixed
// meal-planning replies by keyword, so the conversation stays coherent
// enough to exercise the full submit/respond loop without a network.
const (
	// replyHouseholdQuestion is chosen when the user mentions meals,
	// recipes, or cooking: the natural next step is to ask who is being
	// cooked for.
	replyHouseholdQuestion = "Happy to help you plan meals! First, who am I cooking for? " +
		"How many adults and kids are in your household, and does anyone " +
		"have dietary restrictions I should know about?"

	// replySampleWeek is chosen when the user describes their household
	// size without naming a meal topic.
	replySampleWeek = "Great, that gives me a sense of the table. A simple starting " +
		"week: a one-pan roast chicken night, a batch-cooked grain bowl you " +
		"can remix for lunches, and a big pot of soup that freezes well. " +
		"Tell me about any dietary restrictions and I can tighten this up."

	// replyGeneric covers everything else.
	replyGeneric = "I can help you plan weekly meals, build grocery lists, and adapt " +
		"recipes to your household. Tell me what you'd like to eat this week " +
		"and who you're cooking for."

	// replyApology is the assistant turn appended when a turn fails
	// terminally and no other reply is available.
	replyApology = "Sorry, something went wrong on my end. Please try that again in a moment."
)

// Keyword sets matched against normalized input. Meal terms are checked
// first so "meal prep for my kid" asks about the household rather than
// assuming one.
var (
	mealTerms      = []string{"meal", "recipe", "dinner", "lunch", "breakfast", "cook", "menu", "grocery"}
	householdTerms = []string{"household", "family", "people", "kids", "adults", "serving"}
)

// =============================================================================
// SYNTHESIZER
// =============================================================================

// Synthesizer produces deterministic canned replies. It is pure: no I/O,
// no stored state, the same input always yields the same output.
type Synthesizer struct{}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Respond returns the canned reply for a user message. The result is
// always non-empty.
func (s *Synthesizer) Respond(userMessage string) string {
	normalized := normalizeForMatch(userMessage)

	if containsAny(normalized, mealTerms) {
		return replyHouseholdQuestion
	}
	if containsAny(normalized, householdTerms) {
		return replySampleWeek
	}
	return replyGeneric
}

// Apology returns the fixed apology line for terminally failed turns.
func (s *Synthesizer) Apology() string {
	return replyApology
}

// containsAny reports whether any term occurs as a substring.
func containsAny(normalized string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}

// normalizeForMatch lowercases input and strips accents so keyword
// matching is insensitive to case and common Unicode variants
// ("Dîner" matches "diner"-free sets the same way "DINNER" matches
// "dinner").
func normalizeForMatch(s string) string {
	t := transform.Chain(norm.NFKD)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		normalized = s
	}

	var result strings.Builder
	result.Grow(len(normalized))
	for _, r := range normalized {
		// Skip combining marks left behind by NFKD decomposition.
		if r >= 0x300 && r <= 0x36f {
			continue
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
