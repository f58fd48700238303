// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech provides push-to-talk capture through an external
// speech-to-text command.
//
// The command contract is one-shot: the program records a single
// utterance, prints the transcript to stdout, and exits. Whisper-style
// CLI wrappers and platform dictation shims both fit. Availability is
// resolved once at startup; there is no hot plug detection.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCaptureTimeout bounds one utterance. Recordings longer than
// this are cut off rather than holding the UI in listening state.
const DefaultCaptureTimeout = 30 * time.Second

// maxStderrSnippet limits how much tool output a CaptureError carries.
const maxStderrSnippet = 200

// Well-known CaptureError reasons. Callers branch on these instead of
// parsing error text.
const (
	ReasonUnavailable = "no speech capture command available"
	ReasonBusy        = "capture already in progress"
	ReasonCancelled   = "capture cancelled"
	ReasonTimeout     = "capture timed out"
	ReasonNoSpeech    = "no speech detected"
)

// CaptureError describes a failed or rejected capture attempt. It is
// never fatal; the UI surfaces it in the status line and stays usable.
type CaptureError struct {
	Reason string
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech capture failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("speech capture failed: %s", e.Reason)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Recognizer runs the configured speech-to-text command and returns
// transcripts. One capture at a time; a second Capture while listening
// is rejected rather than queued.
type Recognizer struct {
	command   string
	args      []string
	timeout   time.Duration
	available bool
	logger    zerolog.Logger

	mu        sync.Mutex
	listening bool
	cancel    context.CancelFunc
}

// NewRecognizer creates a recognizer for the given command.
// Availability is resolved here, once: an empty command or one not on
// PATH yields a recognizer that reports unavailable forever.
func NewRecognizer(command string, args []string) *Recognizer {
	r := &Recognizer{
		command: command,
		args:    append([]string(nil), args...),
		timeout: DefaultCaptureTimeout,
		logger:  zerolog.Nop(),
	}
	if command != "" {
		if _, err := exec.LookPath(command); err == nil {
			r.available = true
		}
	}
	return r
}

// WithTimeout sets the per-utterance capture timeout.
func (r *Recognizer) WithTimeout(d time.Duration) *Recognizer {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// WithLogger sets the logger.
func (r *Recognizer) WithLogger(logger zerolog.Logger) *Recognizer {
	r.logger = logger
	return r
}

// Available reports whether the capture command was found at startup.
func (r *Recognizer) Available() bool {
	return r.available
}

// Listening reports whether a capture is in flight.
func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

// Capture records one utterance and returns its transcript. It blocks
// until the command exits, the timeout fires, Stop is called, or ctx
// is done. Whitespace-only output counts as no speech.
//
// CANCELLATION: Context enables timeout and cancellation
func (r *Recognizer) Capture(ctx context.Context) (string, error) {
	if !r.available {
		return "", &CaptureError{Reason: ReasonUnavailable}
	}

	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return "", &CaptureError{Reason: ReasonBusy}
	}
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	r.listening = true
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.listening = false
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	start := time.Now()
	cmd := exec.CommandContext(cctx, r.command, r.args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		switch cctx.Err() {
		case context.Canceled:
			r.logger.Debug().Dur("duration", duration).Msg("speech capture cancelled")
			return "", &CaptureError{Reason: ReasonCancelled}
		case context.DeadlineExceeded:
			r.logger.Warn().Dur("duration", duration).Msg("speech capture timed out")
			return "", &CaptureError{Reason: ReasonTimeout}
		}

		reason := "capture command failed"
		if snippet := stderrSnippet(stderr.Bytes()); snippet != "" {
			reason = fmt.Sprintf("capture command failed: %s", snippet)
		}
		r.logger.Warn().Err(err).Str("command", r.command).Msg("speech capture failed")
		return "", &CaptureError{Reason: reason, Err: err}
	}

	transcript := strings.TrimSpace(stdout.String())
	if transcript == "" {
		return "", &CaptureError{Reason: ReasonNoSpeech}
	}

	r.logger.Debug().
		Dur("duration", duration).
		Int("transcript_len", len(transcript)).
		Msg("speech capture complete")

	return transcript, nil
}

// Stop cancels an in-flight capture. Calling it while idle is a no-op,
// and any error from the dying capture command is swallowed; the
// Capture call itself reports the cancellation.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// IsCancelled reports whether err is a deliberate capture cancellation.
func IsCancelled(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce) && ce.Reason == ReasonCancelled
}

// IsNoSpeech reports whether err means the capture heard nothing.
func IsNoSpeech(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce) && ce.Reason == ReasonNoSpeech
}

// stderrSnippet condenses tool stderr into a single short line.
func stderrSnippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > maxStderrSnippet {
		s = s[:maxStderrSnippet]
	}
	return s
}
