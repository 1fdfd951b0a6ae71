// Package config loads blockpad configuration from TOML files and
// watches them for live reload.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level blockpad configuration.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Input   InputConfig   `toml:"input"`
	Logging LoggingConfig `toml:"logging"`
	Keymap  KeymapConfig  `toml:"keymap"`
}

// EditorConfig configures document behavior.
type EditorConfig struct {
	// DefaultBlock is the block type created by insert operations.
	DefaultBlock string `toml:"default_block"`

	// DocumentLock locks the whole document when set to "all" or
	// "insert". Empty means unlocked.
	DocumentLock string `toml:"document_lock"`

	// MaxHistory caps the undo stack depth.
	MaxHistory int `toml:"max_history"`
}

// InputConfig configures key handling.
type InputConfig struct {
	// SequenceTimeoutMs is how long to wait for multi-key sequences,
	// in milliseconds.
	SequenceTimeoutMs int `toml:"sequence_timeout_ms"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`

	// File is the log file path. Empty disables file logging.
	File string `toml:"file"`
}

// KeymapConfig configures user keymap loading.
type KeymapConfig struct {
	// Dirs are directories searched for user keymap JSON files.
	Dirs []string `toml:"dirs"`

	// LiveReload re-registers user keymaps when their files change.
	LiveReload bool `toml:"live_reload"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			DefaultBlock: "core/paragraph",
			MaxHistory:   1000,
		},
		Input: InputConfig{
			SequenceTimeoutMs: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Keymap: KeymapConfig{
			LiveReload: true,
		},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadReader reads TOML config from an io.Reader, merging over defaults.
func LoadReader(r io.Reader) (Config, error) {
	cfg := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	switch c.Editor.DocumentLock {
	case "", "all", "insert":
	default:
		return fmt.Errorf("invalid editor.document_lock %q", c.Editor.DocumentLock)
	}

	if c.Editor.MaxHistory < 0 {
		return fmt.Errorf("editor.max_history must be >= 0, got %d", c.Editor.MaxHistory)
	}

	if c.Input.SequenceTimeoutMs < 0 {
		return fmt.Errorf("input.sequence_timeout_ms must be >= 0, got %d", c.Input.SequenceTimeoutMs)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}

	return nil
}

// SequenceTimeout returns the sequence timeout as a duration.
func (c Config) SequenceTimeout() time.Duration {
	return time.Duration(c.Input.SequenceTimeoutMs) * time.Millisecond
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "blockpad.toml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "blockpad", "config.toml")
}
