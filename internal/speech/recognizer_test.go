// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech provides push-to-talk capture through an external
// speech-to-text command.
package speech

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

// skipWithoutUnixTools guards tests that shell out to coreutils.
func skipWithoutUnixTools(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on unix coreutils")
	}
}

func TestNewRecognizer_Availability(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"empty command", "", false},
		{"missing binary", "souschef-no-such-tool-xyz", false},
		{"present binary", "echo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.command == "echo" {
				skipWithoutUnixTools(t)
			}
			r := NewRecognizer(tt.command, nil)
			if r.Available() != tt.want {
				t.Errorf("Available() = %v, want %v", r.Available(), tt.want)
			}
		})
	}
}

func TestCapture_ReturnsTranscript(t *testing.T) {
	skipWithoutUnixTools(t)

	r := NewRecognizer("echo", []string{"add pasta to the plan"})

	got, err := r.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "add pasta to the plan" {
		t.Errorf("transcript = %q, want %q", got, "add pasta to the plan")
	}
	if r.Listening() {
		t.Error("recognizer should be idle after capture returns")
	}
}

func TestCapture_UnavailableCommand(t *testing.T) {
	r := NewRecognizer("", nil)

	_, err := r.Capture(context.Background())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CaptureError, got %T: %v", err, err)
	}
	if !strings.Contains(capErr.Reason, "no speech capture command") {
		t.Errorf("unexpected reason: %q", capErr.Reason)
	}
}

func TestCapture_EmptyOutputIsNoSpeech(t *testing.T) {
	skipWithoutUnixTools(t)

	r := NewRecognizer("true", nil)

	_, err := r.Capture(context.Background())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CaptureError, got %T: %v", err, err)
	}
	if !strings.Contains(capErr.Reason, "no speech detected") {
		t.Errorf("unexpected reason: %q", capErr.Reason)
	}
}

func TestCapture_SecondCaptureRejected(t *testing.T) {
	skipWithoutUnixTools(t)

	r := NewRecognizer("sleep", []string{"5"})

	done := make(chan error, 1)
	go func() {
		_, err := r.Capture(context.Background())
		done <- err
	}()

	// Wait for the first capture to take the listening slot.
	deadline := time.Now().Add(2 * time.Second)
	for !r.Listening() {
		if time.Now().After(deadline) {
			t.Fatal("first capture never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err := r.Capture(context.Background())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CaptureError, got %T: %v", err, err)
	}
	if !strings.Contains(capErr.Reason, "already in progress") {
		t.Errorf("unexpected reason: %q", capErr.Reason)
	}

	r.Stop()
	<-done
}

func TestCapture_StopCancels(t *testing.T) {
	skipWithoutUnixTools(t)

	r := NewRecognizer("sleep", []string{"30"})

	done := make(chan error, 1)
	go func() {
		_, err := r.Capture(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !r.Listening() {
		if time.Now().After(deadline) {
			t.Fatal("capture never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	r.Stop()

	select {
	case err := <-done:
		var capErr *CaptureError
		if !errors.As(err, &capErr) {
			t.Fatalf("expected CaptureError, got %T: %v", err, err)
		}
		if !strings.Contains(capErr.Reason, "cancelled") {
			t.Errorf("unexpected reason: %q", capErr.Reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not cancel the capture")
	}

	if r.Listening() {
		t.Error("recognizer should be idle after Stop")
	}
}

func TestCapture_TimeoutFires(t *testing.T) {
	skipWithoutUnixTools(t)

	r := NewRecognizer("sleep", []string{"30"}).WithTimeout(100 * time.Millisecond)

	_, err := r.Capture(context.Background())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CaptureError, got %T: %v", err, err)
	}
	if !strings.Contains(capErr.Reason, "timed out") {
		t.Errorf("unexpected reason: %q", capErr.Reason)
	}
}

func TestStop_IdleIsNoOp(t *testing.T) {
	r := NewRecognizer("", nil)
	r.Stop()
	r.Stop()
}

func TestCaptureError_Messages(t *testing.T) {
	bare := &CaptureError{Reason: ReasonNoSpeech}
	if bare.Error() != "speech capture failed: no speech detected" {
		t.Errorf("unexpected message: %q", bare.Error())
	}

	inner := errors.New("exit status 1")
	wrapped := &CaptureError{Reason: "capture command failed", Err: inner}
	if !strings.Contains(wrapped.Error(), "exit status 1") {
		t.Errorf("wrapped error should include cause: %q", wrapped.Error())
	}
	if !errors.Is(wrapped, inner) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestCapturePredicates(t *testing.T) {
	cancelled := error(&CaptureError{Reason: ReasonCancelled})
	noSpeech := error(&CaptureError{Reason: ReasonNoSpeech})
	failed := error(&CaptureError{Reason: "capture command failed", Err: errors.New("exit status 1")})

	if !IsCancelled(cancelled) {
		t.Error("IsCancelled should match a cancellation")
	}
	if IsCancelled(noSpeech) || IsCancelled(failed) || IsCancelled(nil) {
		t.Error("IsCancelled should only match cancellations")
	}

	if !IsNoSpeech(noSpeech) {
		t.Error("IsNoSpeech should match an empty capture")
	}
	if IsNoSpeech(cancelled) || IsNoSpeech(failed) || IsNoSpeech(nil) {
		t.Error("IsNoSpeech should only match empty captures")
	}
}
