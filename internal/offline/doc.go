// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline provides the local response path used when no API
// credential is configured or a live request fails.
//
// The Synthesizer is deliberately dumb: three canned meal-planning
// templates selected by case-insensitive keyword match. It guarantees a
// non-empty reply for any input, which is what lets the responder promise
// an assistant turn for every accepted submission regardless of network
// state.
package offline
