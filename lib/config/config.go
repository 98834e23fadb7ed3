// Package config loads deployment-tunable defaults for field safety
// behavior from TOML. The timing values ship with the kit's source
// defaults; sites with stricter clinical policy override them per
// deployment rather than per build.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Timeouts carries the controller timing knobs, in milliseconds as they
// appear in deployment files.
type Timeouts struct {
	ConfirmationWindowMS int `toml:"confirmation_window_ms"`
	AutoSaveIntervalMS   int `toml:"auto_save_interval_ms"`
	ShortcutFlashMS      int `toml:"shortcut_flash_ms"`
}

// Config is a deployment's field safety profile.
type Config struct {
	Listen            string   `toml:"listen"`
	LogLevel          string   `toml:"log_level"`
	MedicalDeviceMode bool     `toml:"medical_device_mode"`
	WorkflowShortcuts bool     `toml:"workflow_shortcuts"`
	Timeouts          Timeouts `toml:"timeouts"`
}

// Default returns the kit's shipped defaults.
func Default() Config {
	return Config{
		Listen:            ":8086",
		LogLevel:          "info",
		MedicalDeviceMode: false,
		WorkflowShortcuts: true,
		Timeouts: Timeouts{
			ConfirmationWindowMS: 3000,
			AutoSaveIntervalMS:   30000,
			ShortcutFlashMS:      200,
		},
	}
}

// Load reads a TOML file over the defaults. Values absent from the file
// keep their defaults; a malformed or inconsistent file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the controller would refuse anyway, so
// bad deployments fail at startup instead of first keystroke.
func (c Config) Validate() error {
	if c.Timeouts.ConfirmationWindowMS <= 0 {
		return fmt.Errorf("config: confirmation_window_ms must be positive, got %d", c.Timeouts.ConfirmationWindowMS)
	}
	if c.Timeouts.AutoSaveIntervalMS < 0 {
		return fmt.Errorf("config: auto_save_interval_ms must not be negative, got %d", c.Timeouts.AutoSaveIntervalMS)
	}
	if c.Timeouts.ShortcutFlashMS <= 0 {
		return fmt.Errorf("config: shortcut_flash_ms must be positive, got %d", c.Timeouts.ShortcutFlashMS)
	}
	return nil
}

// ConfirmationWindow returns the window as a duration.
func (c Config) ConfirmationWindow() time.Duration {
	return time.Duration(c.Timeouts.ConfirmationWindowMS) * time.Millisecond
}

// AutoSaveInterval returns the interval as a duration; zero disables it.
func (c Config) AutoSaveInterval() time.Duration {
	return time.Duration(c.Timeouts.AutoSaveIntervalMS) * time.Millisecond
}

// ShortcutFlash returns the flash duration.
func (c Config) ShortcutFlash() time.Duration {
	return time.Duration(c.Timeouts.ShortcutFlashMS) * time.Millisecond
}
