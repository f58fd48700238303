// souschef - a terminal chat assistant for weekly meal planning.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/souschef/internal/assist"
	"github.com/jeranaias/souschef/internal/cloud"
	"github.com/jeranaias/souschef/internal/config"
	"github.com/jeranaias/souschef/internal/model"
	"github.com/jeranaias/souschef/internal/offline"
	"github.com/jeranaias/souschef/internal/setup"
	"github.com/jeranaias/souschef/internal/speech"
	"github.com/jeranaias/souschef/internal/term"
	"github.com/jeranaias/souschef/internal/ui/chat"
	"github.com/jeranaias/souschef/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		mockFlag     = flag.Bool("mock", false, "answer locally, never call the API")
		modelFlag    = flag.String("model", "", "model identifier to request")
		endpointFlag = flag.String("endpoint", "", "chat completions URL")
		configFlag   = flag.String("config", "", "path to a config file")
		versionFlag  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("souschef %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags beat both the file and the environment.
	if *mockFlag {
		cfg.API.ForceMock = true
	}
	if *modelFlag != "" {
		cfg.API.Model = *modelFlag
	}
	if *endpointFlag != "" {
		cfg.API.Endpoint = *endpointFlag
	}

	sessionID := uuid.NewString()
	logger := newLogger(sessionID)
	logger.Info().
		Str("version", Version).
		Str("model", cfg.API.Model).
		Bool("force_mock", cfg.API.ForceMock).
		Msg("session starting")

	// Capabilities are resolved once; everything downstream is a pure
	// function of this value.
	caps := term.Detect()
	logger.Info().
		Bool("tty", caps.IsTTY).
		Int("width", caps.Width).
		Int("height", caps.Height).
		Bool("colors", caps.ColorsEnabled).
		Bool("unicode", caps.SupportsUnicode).
		Msg("terminal capabilities")

	if !caps.IsTTY || !caps.IsStdoutTTY {
		fmt.Fprintln(os.Stderr, "souschef is an interactive terminal app; run it in a terminal.")
		os.Exit(1)
	}

	// First-run credential prompt. Declining is fine; the app runs on
	// the local synthesizer until a key shows up.
	if cfg.API.Key == "" && !cfg.API.ForceMock {
		key, promptErr := setup.PromptCredential(caps)
		switch {
		case errors.Is(promptErr, setup.ErrAborted):
			logger.Info().Msg("credential prompt declined, continuing offline")
		case promptErr != nil:
			logger.Warn().Err(promptErr).Msg("credential prompt failed, continuing offline")
		case key != "":
			cfg.API.Key = key
			if saveErr := config.Save(cfg); saveErr != nil {
				logger.Warn().Err(saveErr).Msg("could not persist credential")
			}
		}
	}

	client := cloud.NewClient(cfg.API.Key).
		WithEndpoint(cfg.API.Endpoint).
		WithModel(cfg.API.Model).
		WithTimeout(cfg.Timeout()).
		WithLogger(logger)

	transcript := model.NewTranscript()
	responder := assist.NewResponder(transcript, client, offline.NewSynthesizer()).
		WithForceMock(cfg.API.ForceMock).
		WithLogger(logger)

	recognizer := speech.NewRecognizer(cfg.Speech.Command, cfg.Speech.Args).
		WithLogger(logger)

	m := chat.New(styles.NewTheme(caps), chat.Session{
		ID:         sessionID,
		Responder:  responder,
		Recognizer: recognizer,
		Config:     cfg,
		Caps:       caps,
		Logger:     logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	watcher := startConfigWatcher(p, logger)
	if watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("program exited with error")
		fmt.Fprintf(os.Stderr, "Error running souschef: %v\n", err)
		os.Exit(1)
	}

	logger.Info().Msg("session ended")
}

// loadConfig resolves the effective configuration. An explicit path
// must exist; the default path falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// newLogger builds the session file logger. The TUI owns the terminal,
// so diagnostics go to ~/.souschef/souschef.log; when that cannot be
// opened the logger is silently disabled rather than fighting the UI
// for stderr.
func newLogger(sessionID string) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("SOUSCHEF_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	if err := config.EnsureConfigDir(); err != nil {
		return zerolog.Nop()
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return zerolog.Nop()
	}

	logFile, err := os.OpenFile(
		filepath.Join(dir, "souschef.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0600,
	)
	if err != nil {
		return zerolog.Nop()
	}

	return zerolog.New(logFile).
		Level(level).
		With().
		Timestamp().
		Str("session", sessionID).
		Logger()
}

// startConfigWatcher feeds validated config reloads into the program.
// A watcher failure is logged and ignored; live reload is a nicety, not
// a requirement.
func startConfigWatcher(p *tea.Program, logger zerolog.Logger) *config.Watcher {
	path, err := config.ConfigPath()
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher disabled")
		return nil
	}

	watcher, err := config.NewWatcher(path, 250*time.Millisecond, func(cfg *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: cfg})
	})
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher disabled")
		return nil
	}

	logger.Info().Str("path", path).Msg("watching config for changes")
	return watcher
}
