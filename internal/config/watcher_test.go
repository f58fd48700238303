// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages the souschef configuration file.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// waitForReload waits for a config on ch with a generous deadline so
// slow CI filesystems do not flake the suite.
func waitForReload(t *testing.T, ch <-chan *Config) *Config {
	t.Helper()
	select {
	case cfg := <-ch:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
		return nil
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	updated := Default()
	updated.API.Model = "gpt-4o"
	require.NoError(t, SaveToPath(updated, path))

	cfg := waitForReload(t, reloads)
	require.Equal(t, "gpt-4o", cfg.API.Model)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	select {
	case <-reloads:
		t.Fatal("sibling file change must not trigger a reload")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_InvalidFileDoesNotFire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("api = {{{nonsense"), 0600))

	select {
	case <-reloads:
		t.Fatal("malformed file must not reach the callback")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan *Config, 16)
	w, err := NewWatcher(path, 200*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		updated := Default()
		updated.API.Model = "gpt-4o"
		require.NoError(t, SaveToPath(updated, path))
		time.Sleep(10 * time.Millisecond)
	}

	waitForReload(t, reloads)

	// Allow a trailing straggler, then require silence.
	time.Sleep(600 * time.Millisecond)
	require.LessOrEqual(t, len(reloads), 1, "burst of writes should coalesce")
}

func TestWatcher_CloseStopsCallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	updated := Default()
	updated.API.Model = "gpt-4o"
	require.NoError(t, SaveToPath(updated, path))

	select {
	case <-reloads:
		t.Fatal("closed watcher must not fire")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_RequiresCallback(t *testing.T) {
	_, err := NewWatcher("config.toml", time.Second, nil)
	require.Error(t, err)
}
