// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file builds every visual region of the interface. Layout is
// measured, not assumed: renderChat sizes the transcript area from the
// real rendered heights of the fixed regions, so the viewport never
// pushes the input or status bar off screen.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/souschef/internal/model"
	"github.com/jeranaias/souschef/internal/ui/styles"
	"github.com/jeranaias/souschef/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

// renderChat assembles the full interface: header, transcript viewport,
// input area, and status bar stacked vertically.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Warming up..."
	}

	// Build fixed-height regions first to find the space left over.
	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	headerHeight := lipgloss.Height(header)
	inputHeight := lipgloss.Height(input)
	statusHeight := lipgloss.Height(status)

	availableHeight := m.height - headerHeight - inputHeight - statusHeight
	if availableHeight < 1 {
		availableHeight = 1
	}

	messages := m.viewport.View()

	// The viewport is sized from conservative estimates on resize; when
	// the real heights disagree, force the transcript region to fit so
	// the fixed regions stay on screen.
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(messages)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		messages,
		input,
		status,
	)
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the top bar: app name, active model, and badges
// for mock mode and an in-flight voice capture.
func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := m.theme.HeaderTitle.Render("souschef")

	var modelHint string
	if m.session.Responder != nil {
		modelHint = m.theme.HeaderHint.Render(" | " + m.session.Responder.Model())
	}

	content := title + modelHint

	if m.session.Responder != nil && m.session.Responder.MockActive() {
		content += " " + m.theme.BadgeMock.Render("MOCK")
	}
	if m.listening {
		content += " " + m.theme.BadgeListen.Render("LISTENING")
	}

	return m.theme.Header.Width(width).Render(content)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the full transcript in insertion order, plus a
// progress line while a reply is pending. An empty transcript shows the
// welcome screen instead.
func (m *Model) renderMessages() string {
	transcript := m.session.Responder.Transcript()
	if transcript == nil || transcript.IsEmpty() {
		return m.renderEmptyState()
	}

	var parts []string
	for _, turn := range transcript.All() {
		var rendered string
		switch turn.Role {
		case model.RoleUser:
			rendered = m.renderUserTurn(turn)
		case model.RoleAssistant:
			rendered = m.renderAssistantTurn(turn)
		default:
			rendered = m.renderSystemTurn(turn)
		}
		if rendered != "" {
			parts = append(parts, rendered)
		}
	}

	if m.state == StateBusy {
		parts = append(parts, m.renderThinking())
	}

	return strings.Join(parts, "\n")
}

// renderUserTurn renders a user turn as a right-aligned bubble. The text
// is shown exactly as submitted.
func (m *Model) renderUserTurn(turn model.Turn) string {
	maxWidth := m.width - 8
	if maxWidth < 10 {
		maxWidth = 10
	}

	// Border and padding take six columns.
	wrapWidth := maxWidth - 6
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	rendered := m.theme.UserBubble.
		MaxWidth(maxWidth).
		Render(util.WrapWidth(turn.Content, wrapWidth))

	marginLeft := m.width - lipgloss.Width(rendered) - 4
	if marginLeft < 0 {
		marginLeft = 0
	}

	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(1).
		Render(rendered)
}

// renderAssistantTurn renders an assistant turn. With markdown enabled
// glamour owns the styling and the content sits flush left with a small
// margin; otherwise the plain text goes in a bubble for separation.
func (m *Model) renderAssistantTurn(turn model.Turn) string {
	if strings.TrimSpace(turn.Content) == "" {
		return ""
	}

	if m.markdown.Enabled() {
		return lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1).
			Render(m.markdown.Render(turn.Content))
	}

	maxWidth := m.width - 8
	if maxWidth < 10 {
		maxWidth = 10
	}
	wrapWidth := maxWidth - 6
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	rendered := m.theme.AssistantBubble.
		MaxWidth(maxWidth).
		Render(util.WrapWidth(turn.Content, wrapWidth))

	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(rendered)
}

// renderSystemTurn renders a system turn centered. The responder never
// stores one, but the transcript type allows it.
func (m *Model) renderSystemTurn(turn model.Turn) string {
	maxWidth := m.width - 8
	if maxWidth < 10 {
		maxWidth = 10
	}
	wrapWidth := maxWidth - 6
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	rendered := m.theme.SystemBubble.
		MaxWidth(maxWidth).
		Render(util.WrapWidth(turn.Content, wrapWidth))

	centered := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, rendered)

	return lipgloss.NewStyle().
		MarginTop(1).
		Render(centered)
}

// renderThinking renders the in-progress indicator under the last turn.
func (m *Model) renderThinking() string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.spinner.View() + " " + m.theme.ThinkingText.Render("Simmering..."))
}

// renderEmptyState renders the welcome screen shown before the first
// submission.
func (m *Model) renderEmptyState() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	emptyWidth := width - 8
	if emptyWidth < 40 {
		emptyWidth = 40
	}
	if emptyWidth > 72 {
		emptyWidth = 72
	}

	var sb strings.Builder

	titleStyle := m.theme.EmptyTitle.
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(titleStyle.Render("souschef"))
	sb.WriteString("\n\n")

	subtitleStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(subtitleStyle.Render("Your kitchen planning assistant"))
	sb.WriteString("\n\n")

	sepStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Align(lipgloss.Center).
		Width(emptyWidth)
	sb.WriteString(sepStyle.Render(strings.Repeat("-", 32)))
	sb.WriteString("\n\n")

	keyStyle := m.theme.ShortcutKey
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	type shortcut struct {
		key  string
		desc string
	}
	shortcuts := []shortcut{{"enter", "Send your message"}}
	if m.keys.Speech.Enabled() {
		shortcuts = append(shortcuts,
			shortcut{"ctrl+s", "Dictate instead of typing"},
			shortcut{"esc", "Cancel a voice capture"})
	}
	shortcuts = append(shortcuts, shortcut{"ctrl+c", "Quit"})

	for _, s := range shortcuts {
		line := fmt.Sprintf("  %s  %s",
			keyStyle.Render(fmt.Sprintf("%-8s", s.key)),
			descStyle.Render(s.desc))
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	exampleStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true)

	examples := []string{
		"\"Plan three dinners for a busy week\"",
		"\"What can I make with chicken thighs and spinach?\"",
		"\"Build a grocery list for taco night\"",
	}

	for _, example := range examples {
		sb.WriteString("  " + exampleStyle.Render(example))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.EmptyHint.
		Align(lipgloss.Center).
		Width(emptyWidth).
		Render("Ask about meals, prep, or groceries to get started"))

	containerStyle := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(width - 4).
		Padding(2, 0)

	return containerStyle.Render(sb.String())
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the text input between horizontal rules, with a
// capture indicator while listening and the character count beneath.
func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var indicator string
	if m.listening {
		indicator = lipgloss.NewStyle().
			Foreground(styles.Blueberry).
			Render(" " + m.spinner.View() + " listening...")
	} else if m.state == StateBusy {
		indicator = lipgloss.NewStyle().
			Foreground(styles.Saffron).
			Render(" (working...)")
	}

	inputLine := lipgloss.NewStyle().
		Width(width - 4).
		Render(m.input.View() + indicator)

	boxed := m.theme.InputContainer.
		Width(width - 2).
		Render(inputLine)

	area := lipgloss.JoinVertical(
		lipgloss.Left,
		boxed,
		m.renderCharCount(),
	)

	// Fixed height keeps the layout from shifting while typing.
	return lipgloss.NewStyle().
		Height(4).
		MaxHeight(4).
		Width(width).
		Render(area)
}

// renderCharCount renders the character counter, right aligned. Color
// escalates as the input approaches its limit.
func (m Model) renderCharCount() string {
	count := len([]rune(m.input.Value()))
	limit := m.input.CharLimit
	if limit <= 0 {
		limit = 1
	}

	style := m.theme.CharCount
	percent := float64(count) / float64(limit) * 100
	switch {
	case percent >= 90:
		style = m.theme.CharCountDanger
	case percent >= 75:
		style = m.theme.CharCountWarning
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	countWidth := width - 4
	if countWidth < 10 {
		countWidth = 10
	}

	return style.
		Width(countWidth).
		Padding(0, 2).
		Render(fmt.Sprintf("%d / %d", count, limit))
}

// =============================================================================
// STATUS BAR
// =============================================================================

// renderStatusBar renders the bottom bar: reply source badge on the
// left, then either the active status message or the model name, with
// keyboard shortcuts on the right. Content never exceeds the terminal
// width.
func (m Model) renderStatusBar() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	maxContentWidth := width - 4
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	badge := m.theme.BadgeLive.Render("LIVE")
	if m.session.Responder != nil && m.session.Responder.MockActive() {
		badge = m.theme.BadgeMock.Render("MOCK")
	}

	shortcuts := m.renderShortcuts()

	badgeWidth := lipgloss.Width(badge)
	shortcutsWidth := lipgloss.Width(shortcuts)

	middleWidth := maxContentWidth - badgeWidth - shortcutsWidth - 2
	if middleWidth < 10 {
		// Narrow terminal: give the middle everything after the badge.
		shortcuts = ""
		middleWidth = maxContentWidth - badgeWidth - 1
		if middleWidth < 1 {
			middleWidth = 1
		}
	}

	var middle string
	if m.status.Visible() {
		middle = m.status.Render(m.theme, middleWidth)
	} else if m.session.Responder != nil {
		middle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(util.TruncateWidth(m.session.Responder.Model(), middleWidth))
	}

	left := badge + " " + middle
	padding := maxContentWidth - lipgloss.Width(left) - lipgloss.Width(shortcuts)
	if padding < 0 {
		padding = 0
	}

	return m.theme.StatusBar.
		Width(width).
		Render(left + strings.Repeat(" ", padding) + shortcuts)
}

// renderShortcuts renders the short help from the key map. Disabled
// bindings are hidden, not greyed.
func (m Model) renderShortcuts() string {
	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		if !binding.Enabled() {
			continue
		}
		help := binding.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(help.Key)+" "+m.theme.ShortcutDesc.Render(help.Desc))
	}
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	return strings.Join(parts, sep)
}
