// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist orchestrates responses: live API when configured, local
// synthesizer otherwise.
package assist

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/souschef/internal/cloud"
	"github.com/jeranaias/souschef/internal/model"
	"github.com/jeranaias/souschef/internal/offline"
)

// ErrEmptyMessage is returned when Respond is called with blank input.
// The submission controller filters this before it can happen; the check
// here keeps the transcript invariant safe regardless of caller.
var ErrEmptyMessage = errors.New("user message must not be empty")

// =============================================================================
// REPLY TYPE
// =============================================================================

// Source identifies which path produced a reply.
type Source int

const (
	// SourceModel means the live API answered.
	SourceModel Source = iota
	// SourceFallback means the local synthesizer answered, either because
	// mock mode is active or because the live request failed.
	SourceFallback
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceModel:
		return "model"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Reply is the explicit result of a respond cycle. Upstream carries the
// live-request error the fallback covered; it is nil on the happy path
// and in plain mock mode.
type Reply struct {
	Text     string
	Source   Source
	Upstream error
}

// =============================================================================
// RESPONDER
// =============================================================================

// Responder owns the conversation flow for one session: it appends the
// user turn, obtains an assistant reply from the live API or the local
// synthesizer, and appends that too. Every accepted submission grows the
// transcript by exactly two turns.
type Responder struct {
	transcript   *model.Transcript
	client       *cloud.Client
	synth        *offline.Synthesizer
	systemPrompt string
	logger       zerolog.Logger

	mu        sync.RWMutex
	forceMock bool
}

// NewResponder creates a responder over the given transcript, client, and
// synthesizer.
func NewResponder(transcript *model.Transcript, client *cloud.Client, synth *offline.Synthesizer) *Responder {
	return &Responder{
		transcript:   transcript,
		client:       client,
		synth:        synth,
		systemPrompt: DefaultSystemPrompt,
		logger:       zerolog.Nop(),
	}
}

// WithSystemPrompt overrides the system prompt.
func (r *Responder) WithSystemPrompt(prompt string) *Responder {
	r.systemPrompt = prompt
	return r
}

// WithForceMock pins the responder to the local path regardless of
// credential state.
func (r *Responder) WithForceMock(force bool) *Responder {
	r.SetForceMock(force)
	return r
}

// WithLogger sets the logger used for respond diagnostics.
func (r *Responder) WithLogger(logger zerolog.Logger) *Responder {
	r.logger = logger
	return r
}

// SetForceMock toggles forced mock mode. Safe under a live config reload.
func (r *Responder) SetForceMock(force bool) {
	r.mu.Lock()
	r.forceMock = force
	r.mu.Unlock()
}

// SetCredential swaps the API credential on the underlying client.
func (r *Responder) SetCredential(apiKey string) {
	r.client.SetCredential(apiKey)
}

// SetModel swaps the model on the underlying client.
func (r *Responder) SetModel(m string) {
	r.client.SetModel(m)
}

// Model returns the model currently requested from the API.
func (r *Responder) Model() string {
	return r.client.Model()
}

// Transcript returns the transcript this responder appends to.
func (r *Responder) Transcript() *model.Transcript {
	return r.transcript
}

// MockActive reports whether the next submission would use the local
// path: mock mode is forced, or no credential is configured.
func (r *Responder) MockActive() bool {
	r.mu.RLock()
	forced := r.forceMock
	r.mu.RUnlock()
	return forced || !r.client.IsConfigured()
}

// Respond runs one submission cycle: append the user turn, obtain an
// assistant reply, append it, and return it. An assistant turn is
// appended on every path, so a completed call always leaves the
// transcript two turns longer.
//
// The returned error is non-nil only when userMessage is blank; in that
// case the transcript is untouched.
func (r *Responder) Respond(ctx context.Context, userMessage string) (Reply, error) {
	if strings.TrimSpace(userMessage) == "" {
		return Reply{}, ErrEmptyMessage
	}

	r.transcript.Append(model.RoleUser, userMessage)

	if r.MockActive() {
		return r.respondLocally(userMessage, nil), nil
	}

	messages := r.buildMessages()
	text, err := r.client.Chat(ctx, messages)
	if err != nil {
		r.logger.Warn().Err(err).Msg("live request failed, answering locally")
		return r.respondLocally(userMessage, err), nil
	}

	r.transcript.Append(model.RoleAssistant, text)
	return Reply{Text: text, Source: SourceModel}, nil
}

// respondLocally produces the fallback assistant turn. The synthesizer
// cannot return empty text, but if it ever did the apology line stands in
// so the two-turns-per-submission invariant holds.
func (r *Responder) respondLocally(userMessage string, upstream error) Reply {
	text := r.synth.Respond(userMessage)
	if text == "" {
		text = r.synth.Apology()
		if upstream == nil {
			upstream = errors.New("local synthesizer returned no reply")
		}
	}
	r.transcript.Append(model.RoleAssistant, text)
	return Reply{Text: text, Source: SourceFallback, Upstream: upstream}
}

// buildMessages assembles the request payload: the system prompt first,
// then every stored turn in insertion order, including the user turn
// appended at the start of the current cycle. No truncation, ever.
func (r *Responder) buildMessages() []cloud.ChatMessage {
	turns := r.transcript.All()
	messages := make([]cloud.ChatMessage, 0, len(turns)+1)
	messages = append(messages, cloud.NewSystemMessage(r.systemPrompt))
	for _, turn := range turns {
		messages = append(messages, cloud.ChatMessage{
			Role:    turn.Role.String(),
			Content: turn.Content,
		})
	}
	return messages
}
