// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the souschef application.
//
// String helpers are rune- and width-aware so truncation never splits a
// UTF-8 sequence or miscounts double-width characters. File helpers write
// atomically so a crash mid-save cannot corrupt the config file.
package util
