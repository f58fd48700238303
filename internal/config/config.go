// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// souschef.
//
// Configuration lives in one TOML file, ~/.souschef/config.toml, with
// built-in defaults and environment variable overrides. The API
// credential is stored under the fixed key api.key; the file is written
// with 0600 permissions because of it.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/souschef/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete souschef configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Speech SpeechConfig `toml:"speech"`
	UI     UIConfig     `toml:"ui"`
}

// APIConfig holds the chat-completion API settings.
type APIConfig struct {
	// Key is the API credential. Empty means the app runs on the local
	// mock path until a credential is supplied.
	Key string `toml:"key"`
	// Endpoint is the chat completions URL.
	Endpoint string `toml:"endpoint"`
	// Model is the model identifier sent with each request.
	Model string `toml:"model"`
	// TimeoutSeconds bounds a whole request, retries included per
	// attempt. The busy state of the UI relies on requests settling.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// ForceMock pins the app to the local synthesizer even when a
	// credential is configured.
	ForceMock bool `toml:"force_mock"`
}

// SpeechConfig holds the speech-to-text capability settings.
type SpeechConfig struct {
	// Command names an external program that records one utterance and
	// prints the transcript to stdout. Empty disables speech capture.
	Command string `toml:"command"`
	// Args are passed to Command.
	Args []string `toml:"args"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Markdown enables rich rendering of assistant turns. When the
	// renderer cannot be constructed the UI falls back to literal text
	// regardless of this setting.
	Markdown bool `toml:"markdown"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Key:            "",
			Endpoint:       "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 120,
			ForceMock:      false,
		},
		Speech: SpeechConfig{
			Command: "",
			Args:    nil,
		},
		UI: UIConfig{
			Markdown: true,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Speech.Args != nil {
		out.Speech.Args = append([]string(nil), c.Speech.Args...)
	}
	return &out
}

// String renders the config for display with the credential redacted.
func (c *Config) String() string {
	key := "[not set]"
	if c.API.Key != "" {
		key = fmt.Sprintf("[REDACTED, length=%d]", len(c.API.Key))
	}
	return fmt.Sprintf("api.key=%s api.endpoint=%s api.model=%s api.timeout_seconds=%d api.force_mock=%v speech.command=%q ui.markdown=%v",
		key, c.API.Endpoint, c.API.Model, c.API.TimeoutSeconds, c.API.ForceMock, c.Speech.Command, c.UI.Markdown)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the souschef configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".souschef"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
// SECURITY: 0700 because the directory holds the API credential.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// SECURITY: Config files should be 0600 (owner read/write only) to protect the credential.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default path, falling back to
// defaults when no file exists. Environment overrides apply last, then
// validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		// No file yet: defaults plus environment.
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file with full
// validation. Values absent from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for fields explicitly blanked in the
// file.
func (c *Config) fillDefaults() {
	defaults := Default()

	if strings.TrimSpace(c.API.Endpoint) == "" {
		c.API.Endpoint = defaults.API.Endpoint
	}
	if strings.TrimSpace(c.API.Model) == "" {
		c.API.Model = defaults.API.Model
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaults.API.TimeoutSeconds
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a TOML file.
// SECURITY: 0600 file, 0700 directory - the file carries the credential.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# souschef configuration file\n")
	buf.WriteString("# Generated by souschef - edit with care\n")
	buf.WriteString("\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Endpoint must parse and use http or https. file://, data://, and
	// friends are rejected outright.
	parsed, err := url.Parse(c.API.Endpoint)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "api.endpoint",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else {
		scheme := strings.ToLower(parsed.Scheme)
		if scheme != "http" && scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "api.endpoint",
				Message: fmt.Sprintf("invalid scheme '%s', must be http or https", parsed.Scheme),
			})
		}
		if parsed.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "api.endpoint",
				Message: "missing host",
			})
		}
	}

	if strings.TrimSpace(c.API.Model) == "" {
		errs = append(errs, ValidationError{
			Field:   "api.model",
			Message: "model must not be empty",
		})
	}

	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_seconds",
			Message: fmt.Sprintf("must be positive, got %d", c.API.TimeoutSeconds),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - SOUSCHEF_API_KEY: overrides api.key
//   - SOUSCHEF_ENDPOINT: overrides api.endpoint
//   - SOUSCHEF_MODEL: overrides api.model
//   - SOUSCHEF_FORCE_MOCK: set to "1" or "true" to force the local path
//   - SOUSCHEF_SPEECH_COMMAND: overrides speech.command
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("SOUSCHEF_API_KEY"); key != "" {
		c.API.Key = key
	}

	if endpoint := os.Getenv("SOUSCHEF_ENDPOINT"); endpoint != "" {
		c.API.Endpoint = endpoint
	}

	if modelName := os.Getenv("SOUSCHEF_MODEL"); modelName != "" {
		c.API.Model = modelName
	}

	if forceMock := os.Getenv("SOUSCHEF_FORCE_MOCK"); forceMock != "" {
		c.API.ForceMock = forceMock == "1" || strings.ToLower(forceMock) == "true"
	}

	if command := os.Getenv("SOUSCHEF_SPEECH_COMMAND"); command != "" {
		c.Speech.Command = command
	}
}
