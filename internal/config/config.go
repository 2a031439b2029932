// Package config loads and validates ejectd configuration.
//
// Configuration is optional: the tool runs entirely on defaults when no file
// exists at ~/.config/ejectd/config.toml. The file only tunes ambient
// concerns (utility paths, timeouts, logging, history retention, color).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Commands names the external utilities and bounds their execution.
type Commands struct {
	Lsblk          string `toml:"lsblk"`
	Findmnt        string `toml:"findmnt"`
	Udisksctl      string `toml:"udisksctl"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the eject history database and the cross-process lock
	// file.
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains configuration for the eject history store.
type History struct {
	Enabled      bool `toml:"enabled"`
	DisplayLimit int  `toml:"display_limit"`
}

// Display contains presentation configuration.
type Display struct {
	// Color is "auto", "always", or "never".
	Color string `toml:"color"`
}

// Config encapsulates all configuration values for ejectd.
type Config struct {
	Commands Commands `toml:"commands"`
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	History  History  `toml:"history"`
	Display  Display  `toml:"display"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Commands: Commands{
			Lsblk:          "lsblk",
			Findmnt:        "findmnt",
			Udisksctl:      "udisksctl",
			TimeoutSeconds: 30,
		},
		Paths: Paths{
			StateDir: "~/.local/state/ejectd",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		History: History{
			Enabled:      true,
			DisplayLimit: 20,
		},
		Display: Display{
			Color: "auto",
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ejectd/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has defaults applied for anything the file omits; a missing file is
// not an error. It reports the resolved path and whether a file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found at %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

func (c *Config) normalize() error {
	c.Commands.Lsblk = strings.TrimSpace(c.Commands.Lsblk)
	c.Commands.Findmnt = strings.TrimSpace(c.Commands.Findmnt)
	c.Commands.Udisksctl = strings.TrimSpace(c.Commands.Udisksctl)
	if c.Commands.Lsblk == "" {
		c.Commands.Lsblk = "lsblk"
	}
	if c.Commands.Findmnt == "" {
		c.Commands.Findmnt = "findmnt"
	}
	if c.Commands.Udisksctl == "" {
		c.Commands.Udisksctl = "udisksctl"
	}

	stateDir, err := expandPath(c.Paths.StateDir)
	if err != nil {
		return fmt.Errorf("state_dir: %w", err)
	}
	c.Paths.StateDir = stateDir

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	c.Display.Color = strings.ToLower(strings.TrimSpace(c.Display.Color))
	if c.Display.Color == "" {
		c.Display.Color = "auto"
	}

	if c.History.DisplayLimit <= 0 {
		c.History.DisplayLimit = 20
	}
	return nil
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if c.Commands.TimeoutSeconds < 0 {
		return fmt.Errorf("commands.timeout_seconds must not be negative, got %d", c.Commands.TimeoutSeconds)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Display.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("display.color must be auto, always, or never, got %q", c.Display.Color)
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must not be empty")
	}
	return nil
}

// EnsureDirectories creates the state directory when missing.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// CommandTimeout returns the bound applied to each external command.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Commands.TimeoutSeconds) * time.Second
}

// HistoryDBPath returns the location of the eject history database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockFilePath returns the location of the cross-process eject lock.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.StateDir, "ejectd.lock")
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			return home, nil
		}
		pathValue = filepath.Join(home, pathValue[2:])
	}
	return filepath.Abs(pathValue)
}

// ExpandPath resolves ~ and relative segments in a user-provided path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
