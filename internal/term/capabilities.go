// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package term detects terminal capabilities.
//
// Capabilities are resolved once at startup with Detect and passed
// explicitly to whatever needs them. Nothing here caches in package
// state, so tests can construct any combination directly.
package term

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultWidth is the fallback width when detection fails.
	DefaultWidth = 80

	// DefaultHeight is the fallback height when detection fails.
	DefaultHeight = 24

	// MinWidth is the narrowest layout the UI will attempt.
	MinWidth = 40
)

// Capabilities describes what the current terminal supports. Resolve
// it once at startup; the UI receives window resizes as events and
// does not re-detect.
type Capabilities struct {
	IsTTY         bool
	IsStdoutTTY   bool
	Width         int
	Height        int
	ColorsEnabled bool
	ColorProfile  termenv.Profile
	// DarkBackground selects the dark half of adaptive color pairs.
	DarkBackground bool
	// SupportsUnicode guards glyph choices such as spinner frames.
	SupportsUnicode bool
}

// Detect resolves the capabilities of the attached terminal.
//
// USABILITY: honors NO_COLOR (https://no-color.org/) and FORCE_COLOR,
// and degrades to plain ASCII when stdout is piped.
func Detect() Capabilities {
	isTTY := term.IsTerminal(int(os.Stdin.Fd()))
	isStdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))

	width, height := size()

	colors := colorsEnabled(isStdoutTTY)
	profile := termenv.Ascii
	if colors {
		profile = termenv.ColorProfile()
	}

	// Background queries need a real terminal; assume dark otherwise,
	// the safer default for piped or redirected output.
	dark := true
	if isStdoutTTY {
		dark = termenv.HasDarkBackground()
	}

	return Capabilities{
		IsTTY:           isTTY,
		IsStdoutTTY:     isStdoutTTY,
		Width:           width,
		Height:          height,
		ColorsEnabled:   colors,
		ColorProfile:    profile,
		DarkBackground:  dark,
		SupportsUnicode: profile != termenv.Ascii,
	}
}

// CanPrompt reports whether interactive prompts are possible.
func (c Capabilities) CanPrompt() bool {
	return c.IsTTY
}

// size returns the terminal dimensions with fallbacks.
func size() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight
	}
	if w < MinWidth {
		w = MinWidth
	}
	return w, h
}

// colorsEnabled decides color support from the environment.
// NO_COLOR wins over everything; FORCE_COLOR wins over TTY detection.
func colorsEnabled(stdoutTTY bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return stdoutTTY
}

// TTYRequiredError is returned when an operation needs a terminal but
// none is attached.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation != "" {
		return "stdin is not a terminal; cannot " + e.Operation + " interactively"
	}
	return "stdin is not a terminal; interactive input not available"
}
