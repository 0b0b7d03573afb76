// Package daemon holds the long-running background services of holdswipe.
package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often a denied permission is re-checked.
const DefaultPollInterval = time.Second

// ErrPermissionDenied reports that the global input hook may not be
// installed yet.
var ErrPermissionDenied = errors.New("input hook permission denied")

// PermissionCheck returns nil when the hook may be installed and an error
// wrapping ErrPermissionDenied while it may not.
type PermissionCheck func() error

// InstallFunc installs the global input hook.
type InstallFunc func() error

// HookInstallerConfig holds configuration for the hook installer.
type HookInstallerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// HookInstaller waits for input permission and installs the hook exactly once.
type HookInstaller struct {
	interval time.Duration
	check    PermissionCheck
	install  InstallFunc
	logger   *slog.Logger

	mu        sync.Mutex
	installed bool
	attempts  int
	lastErr   error
}

// NewHookInstaller creates a new installer.
func NewHookInstaller(cfg HookInstallerConfig, check PermissionCheck, install InstallFunc) *HookInstaller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &HookInstaller{
		interval: interval,
		check:    check,
		install:  install,
		logger:   logger,
	}
}

// Run checks immediately and then on every tick until the hook is installed
// or ctx is cancelled.
func (h *HookInstaller) Run(ctx context.Context) error {
	if h.TryInstall() {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Info("hook installer waiting for permission", "interval", h.interval)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hook installer stopped")
			return ctx.Err()
		case <-ticker.C:
			if h.TryInstall() {
				return nil
			}
		}
	}
}

// TryInstall performs one check and installs when permitted. It reports
// whether the hook is installed.
func (h *HookInstaller) TryInstall() (ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.installed {
		return true
	}
	h.attempts++

	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			h.logger.Error("hook installer panic recovered", "error", err)
			ok = false
		}
	}()

	if h.check != nil {
		if err := h.check(); err != nil {
			h.noteFailure(err)
			return false
		}
	}
	if h.install != nil {
		if err := h.install(); err != nil {
			h.noteFailure(err)
			return false
		}
	}

	h.installed = true
	h.lastErr = nil
	h.logger.Info("input hook installed", "attempts", h.attempts)
	return true
}

// Installed reports whether the hook has been installed.
func (h *HookInstaller) Installed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.installed
}

// LastError returns the most recent failure, or nil.
func (h *HookInstaller) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// noteFailure logs a failure once per distinct error message.
func (h *HookInstaller) noteFailure(err error) {
	repeat := h.lastErr != nil && h.lastErr.Error() == err.Error()
	h.lastErr = err
	if repeat {
		return
	}
	if errors.Is(err, ErrPermissionDenied) {
		h.logger.Warn("input hook not permitted yet", "error", err)
		return
	}
	h.logger.Error("input hook install failed", "error", err)
}
