// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package setup handles the first-run credential prompt.
//
// When no API key is configured, souschef asks for one before the UI
// starts. The prompt blocks, does not echo, and treats Enter or ctrl+c
// as "continue without a key", which lands the app in offline mode.
package setup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/souschef/internal/term"
)

// ErrAborted is returned when the user cancels the credential prompt.
var ErrAborted = errors.New("credential prompt aborted")

// PromptCredential asks for the API key on the terminal without
// echoing. An empty string with a nil error means the user chose to
// skip. The liner state is closed before returning so the UI can take
// over the terminal.
func PromptCredential(caps term.Capabilities) (string, error) {
	if !caps.CanPrompt() {
		return "", &term.TTYRequiredError{Operation: "read API credential"}
	}

	fmt.Println("souschef needs an API key for live meal-planning help.")
	fmt.Println("Paste a key, or press Enter to continue in offline mode.")
	fmt.Println()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	key, err := line.PasswordPrompt("API key: ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	return strings.TrimSpace(key), nil
}
