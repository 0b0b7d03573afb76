package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/holdswipe/internal/volume"
	"gopkg.in/yaml.v3"
)

// GestureConfig holds the radii of the zone classifier, in pixels.
type GestureConfig struct {
	ExitRadius        float64 `yaml:"exit_radius"`         // Below this distance the zone returns to center
	CommitRadius      float64 `yaml:"commit_radius"`       // Horizontal zones need at least this distance
	ExpandDown        float64 `yaml:"expand_down"`         // Downward distance that opens the window list
	ScrollUp          float64 `yaml:"scroll_up"`           // Upward distance that opens scroll mode
	ExpandResetRadius float64 `yaml:"expand_reset_radius"` // Expand clears only within this distance
	HubRadius         float64 `yaml:"hub_radius"`          // Clicks within this radius hit the hub
	ShortClickMs      int     `yaml:"short_click_ms"`      // Longest hold replayed as a plain click
}

// ScrollConfig controls how wheel deltas become workspace steps.
type ScrollConfig struct {
	Sensitivity float64 `yaml:"sensitivity"` // Wheel units per step (>= 1)
	Reverse     bool    `yaml:"reverse"`
}

// VolumeConfig configures the output volume service.
type VolumeConfig struct {
	StepPercent        int      `yaml:"step_percent"`
	IndicatorTimeoutMs int      `yaml:"indicator_timeout_ms"`
	GetCommand         []string `yaml:"get_command"`
	// SetCommand must contain the {{percent}} placeholder.
	SetCommand []string `yaml:"set_command"`
}

// WorkspacesConfig selects the workspace manager.
type WorkspacesConfig struct {
	// Backend is "cli" (an aerospace-compatible binary) or "ewmh" (X11 desktops).
	Backend  string   `yaml:"backend"`
	Command  string   `yaml:"command"`
	Defaults []string `yaml:"defaults"` // Used until the manager answers
}

// OverlayConfig selects the overlay renderer and entry geometry.
type OverlayConfig struct {
	Backend     string `yaml:"backend"` // x11, log or none
	EntryWidth  int    `yaml:"entry_width"`
	EntryHeight int    `yaml:"entry_height"`
	EntryGap    int    `yaml:"entry_gap"`
}

// Config represents the holdswipe configuration.
type Config struct {
	TriggerButton    int              `yaml:"trigger_button"`
	LogLevel         string           `yaml:"log_level"`
	Display          string           `yaml:"display"`
	PermissionPollMs int              `yaml:"permission_poll_ms"`
	Gesture          GestureConfig    `yaml:"gesture"`
	Scroll           ScrollConfig     `yaml:"scroll"`
	Volume           VolumeConfig     `yaml:"volume"`
	Workspaces       WorkspacesConfig `yaml:"workspaces"`
	Overlay          OverlayConfig    `yaml:"overlay"`
}

const (
	BackendCLI  = "cli"
	BackendEWMH = "ewmh"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TriggerButton:    8,
		LogLevel:         "info",
		PermissionPollMs: 1000,
		Gesture: GestureConfig{
			ExitRadius:        80,
			CommitRadius:      160,
			ExpandDown:        80,
			ScrollUp:          120,
			ExpandResetRadius: 30,
			HubRadius:         40,
			ShortClickMs:      1000,
		},
		Scroll: ScrollConfig{
			Sensitivity: 1,
		},
		Volume: VolumeConfig{
			StepPercent:        5,
			IndicatorTimeoutMs: 1000,
			GetCommand:         volume.DefaultGetCommand(),
			SetCommand:         volume.DefaultSetCommand(),
		},
		Workspaces: WorkspacesConfig{
			Backend:  BackendCLI,
			Command:  "aerospace",
			Defaults: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		},
		Overlay: OverlayConfig{
			Backend:     "x11",
			EntryWidth:  280,
			EntryHeight: 24,
			EntryGap:    4,
		},
	}
}

// ShortClick returns the click-replay window.
func (c *Config) ShortClick() time.Duration {
	return time.Duration(c.Gesture.ShortClickMs) * time.Millisecond
}

// IndicatorTimeout returns how long the volume indicator stays up.
func (c *Config) IndicatorTimeout() time.Duration {
	return time.Duration(c.Volume.IndicatorTimeoutMs) * time.Millisecond
}

// PermissionPoll returns the permission re-check interval.
func (c *Config) PermissionPoll() time.Duration {
	return time.Duration(c.PermissionPollMs) * time.Millisecond
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.TriggerButton < 2 || c.TriggerButton > 255 || (c.TriggerButton >= 4 && c.TriggerButton <= 7) {
		return &ValidationError{Path: "trigger_button", Err: fmt.Errorf("trigger_button must be 2, 3 or 8-255 (1 and 4-7 are the primary button and wheel)")}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.PermissionPollMs < 100 {
		return &ValidationError{Path: "permission_poll_ms", Err: fmt.Errorf("permission_poll_ms must be >= 100")}
	}
	if err := c.Gesture.validate(); err != nil {
		return err
	}
	if c.Scroll.Sensitivity < 1 {
		return &ValidationError{Path: "scroll.sensitivity", Err: fmt.Errorf("sensitivity must be >= 1")}
	}
	if err := c.Volume.validate(); err != nil {
		return err
	}
	if err := c.Workspaces.validate(); err != nil {
		return err
	}
	return c.Overlay.validate()
}

func (g GestureConfig) validate() error {
	if g.ExitRadius <= 0 {
		return &ValidationError{Path: "gesture.exit_radius", Err: fmt.Errorf("exit_radius must be > 0")}
	}
	if g.CommitRadius <= g.ExitRadius {
		return &ValidationError{Path: "gesture.commit_radius", Err: fmt.Errorf("commit_radius (%g) must be greater than exit_radius (%g)", g.CommitRadius, g.ExitRadius)}
	}
	if g.ExpandDown <= 0 {
		return &ValidationError{Path: "gesture.expand_down", Err: fmt.Errorf("expand_down must be > 0")}
	}
	if g.ScrollUp <= 0 {
		return &ValidationError{Path: "gesture.scroll_up", Err: fmt.Errorf("scroll_up must be > 0")}
	}
	if g.ExpandResetRadius < 0 || g.ExpandResetRadius > g.ExitRadius {
		return &ValidationError{Path: "gesture.expand_reset_radius", Err: fmt.Errorf("expand_reset_radius must be between 0 and exit_radius")}
	}
	if g.HubRadius <= 0 {
		return &ValidationError{Path: "gesture.hub_radius", Err: fmt.Errorf("hub_radius must be > 0")}
	}
	if g.HubRadius >= g.ExpandDown {
		return &ValidationError{Path: "gesture.hub_radius", Err: fmt.Errorf("hub_radius (%g) must be less than expand_down (%g)", g.HubRadius, g.ExpandDown)}
	}
	if g.ShortClickMs < 0 {
		return &ValidationError{Path: "gesture.short_click_ms", Err: fmt.Errorf("short_click_ms must be >= 0")}
	}
	return nil
}

func (v VolumeConfig) validate() error {
	if v.StepPercent < 1 || v.StepPercent > 100 {
		return &ValidationError{Path: "volume.step_percent", Err: fmt.Errorf("step_percent must be between 1 and 100")}
	}
	if v.IndicatorTimeoutMs < 0 {
		return &ValidationError{Path: "volume.indicator_timeout_ms", Err: fmt.Errorf("indicator_timeout_ms must be >= 0")}
	}
	if len(v.GetCommand) == 0 || strings.TrimSpace(v.GetCommand[0]) == "" {
		return &ValidationError{Path: "volume.get_command", Err: fmt.Errorf("get_command must not be empty")}
	}
	if len(v.SetCommand) == 0 || strings.TrimSpace(v.SetCommand[0]) == "" {
		return &ValidationError{Path: "volume.set_command", Err: fmt.Errorf("set_command must not be empty")}
	}
	for _, arg := range v.SetCommand {
		if strings.Contains(arg, volume.PercentPlaceholder) {
			return nil
		}
	}
	return &ValidationError{Path: "volume.set_command", Err: fmt.Errorf("set_command must contain %s", volume.PercentPlaceholder)}
}

func (w WorkspacesConfig) validate() error {
	switch w.Backend {
	case BackendCLI:
		if strings.TrimSpace(w.Command) == "" {
			return &ValidationError{Path: "workspaces.command", Err: fmt.Errorf("command is required for the cli backend")}
		}
	case BackendEWMH:
	default:
		return &ValidationError{Path: "workspaces.backend", Err: fmt.Errorf("backend must be one of: cli, ewmh")}
	}
	for i, id := range w.Defaults {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Path: fmt.Sprintf("workspaces.defaults[%d]", i), Err: fmt.Errorf("workspace id must not be empty")}
		}
	}
	return nil
}

func (o OverlayConfig) validate() error {
	switch o.Backend {
	case "x11", "log", "none":
	default:
		return &ValidationError{Path: "overlay.backend", Err: fmt.Errorf("backend must be one of: x11, log, none")}
	}
	if o.EntryWidth <= 0 || o.EntryHeight <= 0 {
		return &ValidationError{Path: "overlay", Err: fmt.Errorf("entry_width and entry_height must be > 0")}
	}
	if o.EntryGap < 0 {
		return &ValidationError{Path: "overlay.entry_gap", Err: fmt.Errorf("entry_gap must be >= 0")}
	}
	return nil
}
