// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages the souschef configuration file.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// ReloadFunc receives each successfully reloaded and validated config.
type ReloadFunc func(cfg *Config)

// Watcher watches the config file and invokes a callback when it
// changes. Events are debounced so editors that write in bursts
// trigger a single reload.
//
// RELIABILITY: The parent directory is watched rather than the file
// itself. Saves are atomic renames, which replace the watched inode
// and would silently detach a file-level watch.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onReload ReloadFunc

	mu      sync.Mutex
	pending bool
	lastEvt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher for the config file at path. The
// callback runs on the watcher goroutine; keep it short or hand off.
func NewWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	if onReload == nil {
		return nil, fmt.Errorf("onReload callback must not be nil")
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		watcher:  fsw,
		path:     abs,
		debounce: debounce,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		cancel()
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	go w.run()

	return w, nil
}

// run processes filesystem events until the watcher is closed.
func (w *Watcher) run() {
	defer close(w.done)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isConfigEvent(event) {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.lastEvt = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			// Drain errors so the channel never blocks fsnotify.
			if !ok {
				return
			}

		case <-ticker.C:
			w.firePending()
		}
	}
}

// isConfigEvent reports whether event is a content change of the
// watched config file. Other files in the directory are ignored.
func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// firePending reloads the config once the debounce window has elapsed.
func (w *Watcher) firePending() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvt) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	cfg, err := LoadFromPath(w.path)
	if err != nil {
		// A half-written or invalid file keeps the current config.
		return
	}
	w.onReload(cfg)
}

// Close stops the watcher and waits for the event goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}
