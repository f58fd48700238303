// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the souschef TUI.

This package defines the color palette, theme, and spinner configurations
used throughout the application. All colors use Lip Gloss AdaptiveColor
for automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Basil - Primary accent, brand color, assistant highlights
  - Saffron - Warm highlight for busy and pending states
  - Blueberry - User highlights, info, shortcut keys
  - Paprika - Errors and failed requests

## Semantic Colors

Message bubbles use semantic color tokens:

	UserBubbleBg      - Background for user messages
	UserBubbleFg      - Text color for user messages
	AssistantBubbleBg - Background for assistant messages
	AssistantBubbleFg - Text color for assistant messages
	SystemBubbleBg    - Background for system notices

## Surface and Text Colors

	Surface    - Main background
	SurfaceDim - Subtle backgrounds (headers, status bars)
	Overlay    - Borders and separators

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct is built from terminal capabilities resolved once at
startup and passed in explicitly:

	caps := term.Detect()
	theme := styles.NewTheme(caps)
	if theme.Dark {
		// Dark terminal detected
	}

# Spinners (spinners.go)

Pre-defined spinner styles with a capability-aware selector:

	spinner := styles.SpinnerFor(caps.SupportsUnicode)
	interval := spinner.Duration()

# Status Indicators

ASCII shape indicators that work alongside color for accessibility:

	StatusIndicators.Success - [OK]
	StatusIndicators.Error   - [X]
	StatusIndicators.Warning - [!]
	StatusIndicators.Info    - [i]
*/
package styles
