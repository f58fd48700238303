// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist orchestrates responses: live API when configured, local
// synthesizer otherwise.
//
// The Responder is the single writer of the transcript. Its contract is
// what the rest of the app leans on: a blank message is rejected without
// side effects, and any accepted message adds exactly one user turn and
// one assistant turn, no matter whether the live API answered, failed, or
// was never consulted.
package assist
