// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the chat model and its update loop. The model is a
// strict two-state machine: Idle accepts submissions, Busy waits for
// exactly one ReplyMsg. Every accepted submission ends in a ReplyMsg,
// so Busy cannot stick.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/souschef/internal/assist"
	"github.com/jeranaias/souschef/internal/config"
	"github.com/jeranaias/souschef/internal/speech"
	"github.com/jeranaias/souschef/internal/term"
	"github.com/jeranaias/souschef/internal/ui/components"
	"github.com/jeranaias/souschef/internal/ui/render"
	"github.com/jeranaias/souschef/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the submission controller state.
type State int

const (
	// StateIdle accepts submissions and speech captures.
	StateIdle State = iota
	// StateBusy has a submission in flight; further submissions are
	// dropped until the reply settles.
	StateBusy
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session bundles the long-lived collaborators the chat model drives.
// Everything is passed in explicitly; the model holds no globals.
type Session struct {
	// ID tags every log line from this run.
	ID         string
	Responder  *assist.Responder
	Recognizer *speech.Recognizer
	Config     *config.Config
	Caps       term.Capabilities
	Logger     zerolog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	state     State
	listening bool

	session Session
	theme   *styles.Theme
	keys    KeyMap

	markdown *render.Markdown

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	status   components.StatusLine

	width  int
	height int
}

// New creates a chat model over the given theme and session.
func New(theme *styles.Theme, session Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about meals, prep, or groceries..."
	ti.CharLimit = 4096
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	vp := viewport.New(theme.Width, 20)
	vp.SetContent("")

	frames := styles.SpinnerFor(theme.SupportsUnicode)
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: frames.Frames,
		FPS:    frames.Duration(),
	}
	sp.Style = theme.Spinner

	keys := DefaultKeyMap()
	if session.Recognizer == nil || !session.Recognizer.Available() {
		// No capture command, no microphone affordance: the binding
		// goes inert and every speech hint disappears from the view.
		keys.Speech.SetEnabled(false)
	}

	return Model{
		state:    StateIdle,
		session:  session,
		theme:    theme,
		keys:     keys,
		markdown: newMarkdown(theme, session.Config, theme.Width),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		status:   components.NewStatusLine(),
		width:    theme.Width,
		height:   theme.Height,
	}
}

// newMarkdown builds the reply renderer for the current width. Markdown
// styling requires both the user toggle and a color-capable terminal.
func newMarkdown(theme *styles.Theme, cfg *config.Config, width int) *render.Markdown {
	enabled := theme.ColorsEnabled
	if cfg != nil {
		enabled = enabled && cfg.UI.Markdown
	}
	return render.New(contentWidth(width), theme.Dark, enabled)
}

// contentWidth is the usable width for reply text inside a bubble:
// border, padding, and the opposite-side margin are all spoken for.
func contentWidth(width int) int {
	w := width - 12
	if w < render.MinWrapWidth {
		w = render.MinWrapWidth
	}
	return w
}

// State returns the current controller state.
func (m Model) State() State {
	return m.state
}

// ListeningActive reports whether a speech capture is in flight.
func (m Model) ListeningActive() bool {
	return m.listening
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case SpeechResultMsg:
		return m.handleSpeechResult(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case components.StatusExpireMsg:
		m.status.Expire(msg)
		return m, nil

	case spinner.TickMsg:
		// The spinner only runs while there is something to wait for.
		if m.state != StateBusy && !m.listening {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Everything else (cursor blink and friends) belongs to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat interface.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: header + viewport (dynamic) + input area + status bar.
	// Conservative estimates (slightly larger than actual) keep the
	// viewport from overflowing; renderChat measures the real heights
	// and reclaims the slack.
	const (
		headerHeight    = 2
		inputAreaHeight = 4
		statusBarHeight = 2
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	viewportWidth := m.width
	if viewportWidth < 1 {
		viewportWidth = 1
	}
	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	const promptLen = 2 // "> "
	inputWidth := m.width - 6 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.theme.SetSize(m.width, m.height)

	// Replies wrap to the new width from here on.
	m.markdown = newMarkdown(m.theme, m.session.Config, m.width)

	m.updateViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keys.Speech):
		return m.startSpeech()

	case key.Matches(msg, m.keys.Cancel):
		return m.handleCancel()

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput runs the submission gate: empty input is not a
// submission, and Busy drops rather than queues.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, m.status.Info("type a message first")
	}

	if m.state == StateBusy {
		return m, m.status.Warn("still working on the previous request")
	}
	if m.listening {
		return m, m.status.Warn("finish or cancel the voice capture first")
	}

	m.state = StateBusy
	m.input.Reset()
	m.status.Clear()
	m.session.Logger.Debug().Int("chars", len(text)).Msg("submission accepted")

	return m, tea.Batch(
		RespondCmd(m.session.Responder, text),
		m.spinner.Tick,
	)
}

// handleReply settles the busy state. This is the only place Busy ends.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.state = StateIdle

	var statusCmd tea.Cmd
	switch {
	case msg.Err != nil:
		m.session.Logger.Error().Err(msg.Err).Msg("submission rejected")
		statusCmd = m.status.Error(msg.Err.Error())
	case msg.Reply.Source == assist.SourceFallback && msg.Reply.Upstream != nil:
		m.session.Logger.Warn().Err(msg.Reply.Upstream).Msg("reply served by local fallback")
		statusCmd = m.status.Warn("offline reply; the live request failed")
	}

	m.updateViewport()
	m.viewport.GotoBottom()
	return m, statusCmd
}

// startSpeech begins a voice capture when one can actually run.
func (m Model) startSpeech() (tea.Model, tea.Cmd) {
	if m.session.Recognizer == nil || !m.session.Recognizer.Available() {
		return m, m.status.Warn("no speech capture command configured")
	}
	if m.listening {
		return m, nil
	}
	if m.state == StateBusy {
		return m, m.status.Warn("wait for the current reply to finish")
	}

	m.listening = true
	m.status.Clear()

	return m, tea.Batch(
		CaptureSpeechCmd(m.session.Recognizer),
		m.spinner.Tick,
	)
}

// handleSpeechResult lands a capture outcome. The transcript goes into
// the input for review; submitting stays a deliberate keypress.
func (m Model) handleSpeechResult(msg SpeechResultMsg) (tea.Model, tea.Cmd) {
	m.listening = false

	if msg.Err != nil {
		switch {
		case speech.IsCancelled(msg.Err):
			return m, nil
		case speech.IsNoSpeech(msg.Err):
			return m, m.status.Info("didn't catch anything, try again")
		default:
			m.session.Logger.Warn().Err(msg.Err).Msg("speech capture failed")
			return m, m.status.Error(msg.Err.Error())
		}
	}

	m.input.SetValue(msg.Transcript)
	m.input.CursorEnd()
	return m, nil
}

// handleCancel stops a running capture, or clears the status line when
// nothing is listening.
func (m Model) handleCancel() (tea.Model, tea.Cmd) {
	if m.listening {
		// The capture command reports the cancellation through its
		// SpeechResultMsg; listening clears there.
		m.session.Recognizer.Stop()
		return m, nil
	}

	m.status.Clear()
	return m, nil
}

// handleConfigReload applies a validated config picked up from disk.
func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}

	m.session.Config = msg.Config
	m.session.Responder.SetCredential(msg.Config.API.Key)
	m.session.Responder.SetModel(msg.Config.API.Model)
	m.session.Responder.SetForceMock(msg.Config.API.ForceMock)
	m.markdown = newMarkdown(m.theme, m.session.Config, m.width)

	m.session.Logger.Info().
		Str("model", msg.Config.API.Model).
		Bool("force_mock", msg.Config.API.ForceMock).
		Msg("configuration reloaded")

	m.updateViewport()
	return m, m.status.Info("configuration reloaded")
}

// updateViewport re-renders the transcript into the viewport, keeping
// the view pinned to the bottom when it already was.
func (m *Model) updateViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}
