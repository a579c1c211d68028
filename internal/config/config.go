package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration for TOML string parsing.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the complete btstatus configuration.
type Config struct {
	Bluetooth BluetoothConfig `toml:"bluetooth"`
	Display   DisplayConfig   `toml:"display"`
	Settings  SettingsConfig  `toml:"settings"`
	Log       LogConfig       `toml:"log"`
}

// BluetoothConfig selects the bus and the daemon to watch.
type BluetoothConfig struct {
	Bus     string `toml:"bus"`
	Service string `toml:"service"`

	// RefreshDelay is a pointer so that an explicit "0s" can turn the
	// delayed snapshot off.
	RefreshDelay *Duration `toml:"refresh_delay"`
}

// DisplayConfig holds the labels shown when no device name applies.
type DisplayConfig struct {
	NotConnected string `toml:"not_connected"`
	Error        string `toml:"error"`
}

// SettingsConfig is the command run by the click gesture.
type SettingsConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// LogConfig controls log verbosity and destination.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Delay returns the configured refresh delay.
func (b BluetoothConfig) Delay() time.Duration {
	if b.RefreshDelay == nil {
		return time.Duration(DefaultRefreshDelay)
	}
	return time.Duration(*b.RefreshDelay)
}

// DefaultPath returns the default config file path following XDG conventions.
// On Unix, checks $XDG_CONFIG_HOME first, then falls back to ~/.config.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "btstatus", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "btstatus", "config.toml"), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a config file from the given path.
// If path is empty, it uses the default XDG path, and a missing file there
// yields the defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Bluetooth.Bus == "" {
		cfg.Bluetooth.Bus = DefaultBus
	}
	if cfg.Bluetooth.Service == "" {
		cfg.Bluetooth.Service = DefaultService
	}
	if cfg.Bluetooth.RefreshDelay == nil {
		d := DefaultRefreshDelay
		cfg.Bluetooth.RefreshDelay = &d
	}
	if cfg.Display.NotConnected == "" {
		cfg.Display.NotConnected = DefaultNotConnected
	}
	if cfg.Display.Error == "" {
		cfg.Display.Error = DefaultError
	}
	// Args are only defaulted along with the command, so a custom command
	// does not inherit "bluetooth".
	if cfg.Settings.Command == "" {
		cfg.Settings.Command = DefaultSettingsCommand
		if cfg.Settings.Args == nil {
			cfg.Settings.Args = append([]string(nil), DefaultSettingsArgs...)
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// validate checks that values are within their allowed sets.
func validate(cfg *Config) error {
	var errs []error

	switch cfg.Bluetooth.Bus {
	case "system", "session":
	default:
		errs = append(errs, fmt.Errorf("bluetooth.bus must be \"system\" or \"session\", got %q", cfg.Bluetooth.Bus))
	}

	if cfg.Bluetooth.Delay() < 0 {
		errs = append(errs, errors.New("bluetooth.refresh_delay must not be negative"))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
