// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/jeranaias/souschef/internal/assist"
	"github.com/jeranaias/souschef/internal/cloud"
	"github.com/jeranaias/souschef/internal/config"
	"github.com/jeranaias/souschef/internal/model"
	"github.com/jeranaias/souschef/internal/offline"
	"github.com/jeranaias/souschef/internal/speech"
	"github.com/jeranaias/souschef/internal/term"
	"github.com/jeranaias/souschef/internal/ui/components"
	"github.com/jeranaias/souschef/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testCaps() term.Capabilities {
	return term.Capabilities{
		IsTTY:           true,
		IsStdoutTTY:     true,
		Width:           100,
		Height:          30,
		ColorsEnabled:   false,
		ColorProfile:    termenv.Ascii,
		DarkBackground:  true,
		SupportsUnicode: false,
	}
}

// testSession wires a forced-mock responder so every respond cycle
// settles synchronously with no network.
func testSession(recognizer *speech.Recognizer) Session {
	transcript := model.NewTranscript()
	client := cloud.NewClient("")
	synth := offline.NewSynthesizer()
	responder := assist.NewResponder(transcript, client, synth).
		WithForceMock(true).
		WithLogger(zerolog.Nop())

	return Session{
		Responder:  responder,
		Recognizer: recognizer,
		Config:     config.Default(),
		Caps:       testCaps(),
		Logger:     zerolog.Nop(),
	}
}

func newTestModel(t *testing.T, recognizer *speech.Recognizer) Model {
	t.Helper()
	caps := testCaps()
	m := New(styles.NewTheme(caps), testSession(recognizer))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: caps.Width, Height: caps.Height})
	return updated.(Model)
}

// runCmd executes a command tree and collects every message it
// produces. Only safe for commands that settle immediately; scheduled
// status expiries are never passed here.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var msgs []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			msgs = append(msgs, runCmd(sub)...)
		}
	default:
		msgs = append(msgs, msg)
	}
	return msgs
}

func findReply(t *testing.T, msgs []tea.Msg) ReplyMsg {
	t.Helper()
	for _, msg := range msgs {
		if reply, ok := msg.(ReplyMsg); ok {
			return reply
		}
	}
	t.Fatal("Expected a ReplyMsg, got none")
	return ReplyMsg{}
}

func findSpeechResult(t *testing.T, msgs []tea.Msg) SpeechResultMsg {
	t.Helper()
	for _, msg := range msgs {
		if result, ok := msg.(SpeechResultMsg); ok {
			return result
		}
	}
	t.Fatal("Expected a SpeechResultMsg, got none")
	return SpeechResultMsg{}
}

// submit types text into the input and presses enter.
func submit(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

// settle runs one full submission: enter, execute the respond command,
// and deliver the reply back to the model.
func settle(t *testing.T, m Model, text string) (Model, ReplyMsg) {
	t.Helper()
	m, cmd := submit(m, text)
	if cmd == nil {
		t.Fatal("Expected a command from an accepted submission, got nil")
	}
	reply := findReply(t, runCmd(cmd))
	updated, _ := m.Update(reply)
	return updated.(Model), reply
}

// =============================================================================
// SUBMISSION GATE
// =============================================================================

func TestNewModelStartsIdle(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	if m.State() != StateIdle {
		t.Errorf("Expected initial state %v, got %v", StateIdle, m.State())
	}
	if m.ListeningActive() {
		t.Error("Expected a fresh model to not be listening")
	}
	if !m.input.Focused() {
		t.Error("Expected the input to start focused")
	}
}

func TestEmptyInputIsNotASubmission(t *testing.T) {
	for _, value := range []string{"", "   ", "\t"} {
		m := newTestModel(t, speech.NewRecognizer("", nil))

		m, _ = submit(m, value)

		if m.State() != StateIdle {
			t.Errorf("Submit(%q): expected state to stay %v, got %v", value, StateIdle, m.State())
		}
		if !m.status.Visible() {
			t.Errorf("Submit(%q): expected a validation status", value)
		}
		if m.status.Kind() != components.StatusInfo {
			t.Errorf("Submit(%q): expected status kind %v, got %v", value, components.StatusInfo, m.status.Kind())
		}
		if got := m.session.Responder.Transcript().Len(); got != 0 {
			t.Errorf("Submit(%q): expected transcript untouched, got %d turns", value, got)
		}
	}
}

func TestAcceptedSubmissionEntersBusy(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	m, cmd := submit(m, "plan dinners for the week")

	if m.State() != StateBusy {
		t.Errorf("Expected state %v after submission, got %v", StateBusy, m.State())
	}
	if cmd == nil {
		t.Fatal("Expected a command from an accepted submission, got nil")
	}
	if m.input.Value() != "" {
		t.Errorf("Expected input cleared on submission, got %q", m.input.Value())
	}
}

func TestRespondCycleAppendsExactlyTwoTurns(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	m, reply := settle(t, m, "plan dinners for the week")

	if m.State() != StateIdle {
		t.Errorf("Expected state %v after reply, got %v", StateIdle, m.State())
	}
	turns := m.session.Responder.Transcript().All()
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns after one cycle, got %d", len(turns))
	}
	if turns[0].Role != model.RoleUser {
		t.Errorf("Expected first turn role %q, got %q", model.RoleUser, turns[0].Role)
	}
	if turns[0].Content != "plan dinners for the week" {
		t.Errorf("Expected user turn stored verbatim, got %q", turns[0].Content)
	}
	if turns[1].Role != model.RoleAssistant {
		t.Errorf("Expected second turn role %q, got %q", model.RoleAssistant, turns[1].Role)
	}
	if reply.Err != nil {
		t.Errorf("Expected no error from a mock cycle, got %v", reply.Err)
	}
}

func TestMealPrepQuestionAnsweredLocally(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	m, reply := settle(t, m, "I want meal prep for my kid")

	if reply.Reply.Source != assist.SourceFallback {
		t.Errorf("Expected mock reply source %v, got %v", assist.SourceFallback, reply.Reply.Source)
	}
	if !strings.Contains(reply.Reply.Text, "household") {
		t.Errorf("Expected a household question, got %q", reply.Reply.Text)
	}
	// Mock replies are not failures; no status warning should appear.
	if m.status.Visible() {
		t.Errorf("Expected no status after a clean mock reply, got %q", m.status.Text())
	}
}

func TestTranscriptGrowsByTwoPerSubmission(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	m, _ = settle(t, m, "I want meal prep for my kid")
	m, _ = settle(t, m, "two adults and a toddler")

	turns := m.session.Responder.Transcript().All()
	if len(turns) != 4 {
		t.Fatalf("Expected 4 turns after two cycles, got %d", len(turns))
	}
	wantRoles := []model.Role{model.RoleUser, model.RoleAssistant, model.RoleUser, model.RoleAssistant}
	for i, turn := range turns {
		if turn.Role != wantRoles[i] {
			t.Errorf("turn[%d].Role = %q, want %q", i, turn.Role, wantRoles[i])
		}
	}
}

func TestBusySubmissionDropped(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	m, _ = submit(m, "first message")
	if m.State() != StateBusy {
		t.Fatalf("Expected state %v, got %v", StateBusy, m.State())
	}

	m, _ = submit(m, "second message")

	if m.State() != StateBusy {
		t.Errorf("Expected state to stay %v, got %v", StateBusy, m.State())
	}
	if !m.status.Visible() {
		t.Error("Expected a status warning for a dropped submission")
	}
	if m.input.Value() != "second message" {
		t.Errorf("Expected dropped text kept in the input, got %q", m.input.Value())
	}
	// The first cycle's command was never executed here, so the
	// transcript shows nothing; the dropped submission must not change
	// that.
	if got := m.session.Responder.Transcript().Len(); got != 0 {
		t.Errorf("Expected transcript untouched by the dropped submission, got %d turns", got)
	}
}

func TestSubmissionWhileListeningDropped(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))
	m.listening = true

	m, _ = submit(m, "typed mid-capture")

	if m.State() != StateIdle {
		t.Errorf("Expected state to stay %v, got %v", StateIdle, m.State())
	}
	if !m.status.Visible() {
		t.Error("Expected a status warning for a submission during capture")
	}
}

// =============================================================================
// REPLY SETTLEMENT
// =============================================================================

func TestReplyAlwaysEndsBusy(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))
	m.state = StateBusy

	updated, _ := m.Update(ReplyMsg{Err: errors.New("request failed")})
	m = updated.(Model)

	if m.State() != StateIdle {
		t.Errorf("Expected state %v even on error, got %v", StateIdle, m.State())
	}
	if !m.status.Visible() {
		t.Error("Expected an error status after a failed reply")
	}
	if m.status.Kind() != components.StatusError {
		t.Errorf("Expected status kind %v, got %v", components.StatusError, m.status.Kind())
	}
}

func TestFallbackReplyAfterUpstreamFailureWarns(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))
	m.state = StateBusy

	updated, _ := m.Update(ReplyMsg{
		Reply: assist.Reply{
			Text:     "canned reply",
			Source:   assist.SourceFallback,
			Upstream: errors.New("api: status 500"),
		},
	})
	m = updated.(Model)

	if m.State() != StateIdle {
		t.Errorf("Expected state %v, got %v", StateIdle, m.State())
	}
	if !m.status.Visible() {
		t.Error("Expected a warning when the fallback covered a live failure")
	}
	if m.status.Kind() != components.StatusWarning {
		t.Errorf("Expected status kind %v, got %v", components.StatusWarning, m.status.Kind())
	}
}

func TestModelReplySetsNoStatus(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))
	m.state = StateBusy

	updated, _ := m.Update(ReplyMsg{
		Reply: assist.Reply{Text: "a real reply", Source: assist.SourceModel},
	})
	m = updated.(Model)

	if m.status.Visible() {
		t.Errorf("Expected no status after a live reply, got %q", m.status.Text())
	}
}

// =============================================================================
// SPEECH CAPTURE
// =============================================================================

func TestSpeechAffordanceHiddenWhenUnavailable(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	view := m.View()
	if strings.Contains(view, "speak") || strings.Contains(view, "Dictate") {
		t.Error("Expected no microphone affordance without a configured command")
	}

	// The binding is inert, so the key does nothing at all.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if m.ListeningActive() {
		t.Error("Expected no capture without a configured command")
	}
	if m.status.Visible() {
		t.Errorf("Expected no status for an inert key, got %q", m.status.Text())
	}
	if m.State() != StateIdle {
		t.Errorf("Expected state idle, got %v", m.State())
	}
}

func TestSpeechAffordanceShownWhenAvailable(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))

	view := m.View()
	if !strings.Contains(view, "speak") {
		t.Error("Expected the speak shortcut in the status bar")
	}
	if !strings.Contains(view, "Dictate") {
		t.Error("Expected the dictation hint on the welcome screen")
	}
}

func TestSpeechCapturePopulatesInputOnce(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"add rice to the list"}))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if !m.ListeningActive() {
		t.Fatal("Expected the model to be listening after ctrl+s")
	}
	if cmd == nil {
		t.Fatal("Expected a capture command, got nil")
	}

	result := findSpeechResult(t, runCmd(cmd))
	if result.Err != nil {
		t.Fatalf("Expected a clean capture, got %v", result.Err)
	}

	updated, _ = m.Update(result)
	m = updated.(Model)

	if m.ListeningActive() {
		t.Error("Expected listening to end when the result lands")
	}
	if m.input.Value() != "add rice to the list" {
		t.Errorf("Expected transcript in the input, got %q", m.input.Value())
	}
	// The capture never submits on the user's behalf.
	if m.State() != StateIdle {
		t.Errorf("Expected state %v after capture, got %v", StateIdle, m.State())
	}
	if got := m.session.Responder.Transcript().Len(); got != 0 {
		t.Errorf("Expected no transcript turns from a capture, got %d", got)
	}
}

func TestSpeechKeyWhileBusyWarns(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.state = StateBusy

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if m.ListeningActive() {
		t.Error("Expected no capture while busy")
	}
	if !m.status.Visible() {
		t.Error("Expected a status warning for a capture attempt while busy")
	}
}

func TestSpeechKeyWhileListeningIgnored(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.listening = true

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if !m.ListeningActive() {
		t.Error("Expected the existing capture to keep running")
	}
	if cmd != nil {
		t.Error("Expected no second capture command")
	}
}

func TestCancelledCaptureIsSilent(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.listening = true

	updated, _ := m.Update(SpeechResultMsg{
		Err: &speech.CaptureError{Reason: speech.ReasonCancelled},
	})
	m = updated.(Model)

	if m.ListeningActive() {
		t.Error("Expected listening to end on cancellation")
	}
	if m.status.Visible() {
		t.Errorf("Expected no status for a deliberate cancel, got %q", m.status.Text())
	}
	if m.input.Value() != "" {
		t.Errorf("Expected input untouched by a cancelled capture, got %q", m.input.Value())
	}
}

func TestNoSpeechShowsHint(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.listening = true

	updated, _ := m.Update(SpeechResultMsg{
		Err: &speech.CaptureError{Reason: speech.ReasonNoSpeech},
	})
	m = updated.(Model)

	if !m.status.Visible() {
		t.Fatal("Expected a hint when no speech was detected")
	}
	if m.status.Kind() != components.StatusInfo {
		t.Errorf("Expected status kind %v, got %v", components.StatusInfo, m.status.Kind())
	}
}

func TestFailedCaptureShowsError(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.listening = true

	updated, _ := m.Update(SpeechResultMsg{
		Err: &speech.CaptureError{Reason: "capture command failed", Err: errors.New("exit 1")},
	})
	m = updated.(Model)

	if !m.status.Visible() {
		t.Fatal("Expected an error status for a failed capture")
	}
	if m.status.Kind() != components.StatusError {
		t.Errorf("Expected status kind %v, got %v", components.StatusError, m.status.Kind())
	}
}

func TestEscWhileListeningLeavesFlagForResult(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.listening = true

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	// The flag clears when the cancelled capture reports back, not here.
	if !m.ListeningActive() {
		t.Error("Expected listening to stay set until the result message")
	}
	if cmd != nil {
		t.Error("Expected no command from esc during capture")
	}
}

func TestEscWhileIdleClearsStatus(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))
	m.status.Warn("some leftover warning")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.status.Visible() {
		t.Errorf("Expected esc to clear the status, got %q", m.status.Text())
	}
}

// =============================================================================
// STATUS AND SPINNER ROUTING
// =============================================================================

func TestStaleStatusExpiryIgnored(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))
	m.status.Warn("still relevant")

	updated, _ := m.Update(components.StatusExpireMsg{Seq: 999})
	m = updated.(Model)

	if !m.status.Visible() {
		t.Error("Expected a stale expiry to leave the status visible")
	}
}

func TestSpinnerTickDroppedWhenIdle(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	_, cmd := m.Update(spinner.TickMsg{})
	if cmd != nil {
		t.Error("Expected idle spinner ticks to stop the cycle")
	}

	m.state = StateBusy
	_, cmd = m.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Expected busy spinner ticks to schedule the next frame")
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestConfigReloadAppliesToSession(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	cfg := config.Default()
	cfg.API.Model = "gpt-4o"
	cfg.API.ForceMock = true

	updated, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = updated.(Model)

	if got := m.session.Responder.Model(); got != "gpt-4o" {
		t.Errorf("Expected reloaded model %q, got %q", "gpt-4o", got)
	}
	if !m.session.Responder.MockActive() {
		t.Error("Expected force_mock from the reload to take effect")
	}
	if !m.status.Visible() {
		t.Error("Expected a status note for the reload")
	}
}

func TestNilConfigReloadIgnored(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	updated, _ := m.Update(ConfigReloadedMsg{Config: nil})
	m = updated.(Model)

	if m.status.Visible() {
		t.Error("Expected a nil reload to change nothing")
	}
}

// =============================================================================
// VIEW
// =============================================================================

func TestViewBeforeFirstResize(t *testing.T) {
	caps := testCaps()
	caps.Width = 0
	caps.Height = 0
	m := New(styles.NewTheme(caps), testSession(speech.NewRecognizer("", nil)))

	if got := m.View(); !strings.Contains(got, "Warming up") {
		t.Errorf("Expected the placeholder before sizing, got %q", got)
	}
}

func TestViewEmptyTranscriptShowsWelcome(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	view := m.View()
	if !strings.Contains(view, "souschef") {
		t.Error("Expected the welcome screen to name the app")
	}
	if !strings.Contains(view, "Plan three dinners") {
		t.Error("Expected the welcome screen to suggest an example prompt")
	}
}

func TestViewShowsSettledConversation(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	m, _ = settle(t, m, "taco night")

	view := m.View()
	if !strings.Contains(view, "taco night") {
		t.Error("Expected the user turn in the rendered view")
	}
	if !strings.Contains(view, "household") {
		t.Error("Expected the assistant reply in the rendered view")
	}
	if !strings.Contains(view, "MOCK") {
		t.Error("Expected the mock badge while forced mock is on")
	}
}

func TestViewShowsListeningBadge(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("echo", []string{"hi"}))
	m.listening = true

	if view := m.View(); !strings.Contains(view, "LISTENING") {
		t.Error("Expected the listening badge during a capture")
	}
}

func TestResizeReflowsLayout(t *testing.T) {
	m := newTestModel(t, speech.NewRecognizer("", nil))

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = updated.(Model)

	if m.width != 60 || m.height != 20 {
		t.Errorf("Expected 60x20 after resize, got %dx%d", m.width, m.height)
	}
	if m.viewport.Width != 60 {
		t.Errorf("Expected viewport width 60, got %d", m.viewport.Width)
	}
	// The full view must never exceed the terminal height.
	if lines := strings.Count(m.View(), "\n") + 1; lines > 20 {
		t.Errorf("Expected at most 20 rendered lines, got %d", lines)
	}
}
