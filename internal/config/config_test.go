package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ShortClick() != time.Second {
		t.Fatalf("short click = %v", cfg.ShortClick())
	}
	if cfg.PermissionPoll() != time.Second {
		t.Fatalf("permission poll = %v", cfg.PermissionPoll())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if !reflect.DeepEqual(res.Config, DefaultConfig()) {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.TriggerButton != 8 {
		t.Fatalf("expected trigger_button 8, got %d", res.Config.TriggerButton)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"trigger_button: 9",
		"gesture:",
		"  commit_radius: 200",
		"scroll:",
		"  sensitivity: 3",
		"  reverse: true",
		"volume:",
		"  get_command: [wpctl, get-volume, \"@DEFAULT_AUDIO_SINK@\"]",
		"  set_command: [wpctl, set-volume, \"@DEFAULT_AUDIO_SINK@\", \"{{percent}}%\"]",
		"workspaces:",
		"  backend: ewmh",
		"  defaults: [web, code]",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.TriggerButton != 9 || cfg.Gesture.CommitRadius != 200 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Gesture.ExitRadius != 80 {
		t.Fatalf("exit_radius default lost: %v", cfg.Gesture.ExitRadius)
	}
	if cfg.Scroll.Sensitivity != 3 || !cfg.Scroll.Reverse {
		t.Fatalf("scroll = %+v", cfg.Scroll)
	}
	if cfg.Volume.StepPercent != 5 || cfg.Volume.GetCommand[0] != "wpctl" {
		t.Fatalf("volume = %+v", cfg.Volume)
	}
	if !reflect.DeepEqual(cfg.Workspaces.Defaults, []string{"web", "code"}) {
		t.Fatalf("defaults = %v", cfg.Workspaces.Defaults)
	}
	if src := res.Sources["gesture.commit_radius"]; src.Line != 3 {
		t.Fatalf("source line = %d, want 3", src.Line)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "trigger: 8\n")); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "gesture:\n  exit_radius: 80\n  commit_radius: 50\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "gesture.commit_radius" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Line != 3 || !strings.Contains(err.Error(), path+":3:") {
		t.Fatalf("error lacks source context: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"left button trigger", func(c *Config) { c.TriggerButton = 1 }, "trigger_button"},
		{"wheel trigger", func(c *Config) { c.TriggerButton = 5 }, "trigger_button"},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"poll too fast", func(c *Config) { c.PermissionPollMs = 10 }, "permission_poll_ms"},
		{"exit radius", func(c *Config) { c.Gesture.ExitRadius = 0 }, "gesture.exit_radius"},
		{"commit not past exit", func(c *Config) { c.Gesture.CommitRadius = 80 }, "gesture.commit_radius"},
		{"expand reset beyond exit", func(c *Config) { c.Gesture.ExpandResetRadius = 90 }, "gesture.expand_reset_radius"},
		{"hub reaches first entry", func(c *Config) { c.Gesture.HubRadius = 80 }, "gesture.hub_radius"},
		{"sensitivity below one", func(c *Config) { c.Scroll.Sensitivity = 0.5 }, "scroll.sensitivity"},
		{"volume step", func(c *Config) { c.Volume.StepPercent = 0 }, "volume.step_percent"},
		{"set command placeholder", func(c *Config) { c.Volume.SetCommand = []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "50%"} }, "volume.set_command"},
		{"empty get command", func(c *Config) { c.Volume.GetCommand = nil }, "volume.get_command"},
		{"backend", func(c *Config) { c.Workspaces.Backend = "sway" }, "workspaces.backend"},
		{"cli without command", func(c *Config) { c.Workspaces.Command = " " }, "workspaces.command"},
		{"blank default id", func(c *Config) { c.Workspaces.Defaults = []string{"1", ""} }, "workspaces.defaults[1]"},
		{"overlay backend", func(c *Config) { c.Overlay.Backend = "gtk" }, "overlay.backend"},
		{"overlay gap", func(c *Config) { c.Overlay.EntryGap = -1 }, "overlay.entry_gap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]string{"debug": "DEBUG", "info": "INFO", "warning": "WARN", "error": "ERROR"}
	for level, want := range tests {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if got := cfg.SlogLevel().String(); got != want {
			t.Errorf("SlogLevel(%q) = %s, want %s", level, got, want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Overlay.Backend = "log"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(res.Config, cfg) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", res.Config, cfg)
	}
}

func TestDefaultConfigPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(dir, "holdswipe", "config.yaml") {
		t.Fatalf("path = %q", path)
	}
}
