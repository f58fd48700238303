// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data structures.
//
// A session owns exactly one Transcript: an append-only, in-memory record
// of user and assistant turns. Nothing here persists across restarts and
// nothing is ever evicted; the transcript is the sole conversational state
// of the application.
package model
