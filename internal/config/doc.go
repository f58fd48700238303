// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages the souschef configuration file.
//
// One TOML file at ~/.souschef/config.toml holds every setting,
// including the API credential under api.key. Loading starts from
// built-in defaults, layers the file on top, then environment
// variables (SOUSCHEF_*), and validates the result. Saving is atomic
// and owner-only because the credential lives in the file.
//
// Watcher provides hot reload: it watches the config directory,
// debounces editor write bursts, and delivers each validated config
// to a callback.
package config
