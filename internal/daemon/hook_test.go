package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestHookInstallerInstallsImmediately(t *testing.T) {
	var installs int32
	h := NewHookInstaller(HookInstallerConfig{}, nil, func() error {
		atomic.AddInt32(&installs, 1)
		return nil
	})

	if err := h.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !h.Installed() {
		t.Fatal("hook not installed")
	}
	if h.TryInstall(); atomic.LoadInt32(&installs) != 1 {
		t.Fatalf("installs = %d, want 1", installs)
	}
}

func TestHookInstallerWaitsForPermission(t *testing.T) {
	var checks, installs int32
	check := func() error {
		if atomic.AddInt32(&checks, 1) < 3 {
			return fmt.Errorf("grab held by another client: %w", ErrPermissionDenied)
		}
		return nil
	}
	install := func() error {
		atomic.AddInt32(&installs, 1)
		return nil
	}
	h := NewHookInstaller(HookInstallerConfig{Interval: 5 * time.Millisecond}, check, install)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := atomic.LoadInt32(&checks); got != 3 {
		t.Fatalf("checks = %d, want 3", got)
	}
	if got := atomic.LoadInt32(&installs); got != 1 {
		t.Fatalf("installs = %d, want 1", got)
	}
	if h.LastError() != nil {
		t.Fatalf("LastError = %v after install", h.LastError())
	}
}

func TestHookInstallerRetriesFailedInstall(t *testing.T) {
	var installs int32
	h := NewHookInstaller(HookInstallerConfig{}, nil, func() error {
		if atomic.AddInt32(&installs, 1) == 1 {
			return errors.New("grab failed")
		}
		return nil
	})

	if h.TryInstall() {
		t.Fatal("first attempt should fail")
	}
	if h.LastError() == nil {
		t.Fatal("LastError not recorded")
	}
	if !h.TryInstall() || !h.TryInstall() {
		t.Fatal("second attempt should install")
	}
	if got := atomic.LoadInt32(&installs); got != 2 {
		t.Fatalf("installs = %d, want 2", got)
	}
}

func TestHookInstallerStopsOnCancel(t *testing.T) {
	h := NewHookInstaller(HookInstallerConfig{Interval: time.Millisecond},
		func() error { return ErrPermissionDenied },
		func() error { t.Error("install called without permission"); return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := h.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v, want deadline exceeded", err)
	}
	if h.Installed() {
		t.Fatal("installed without permission")
	}
	if !errors.Is(h.LastError(), ErrPermissionDenied) {
		t.Fatalf("LastError = %v", h.LastError())
	}
}

func TestHookInstallerRecoversPanic(t *testing.T) {
	h := NewHookInstaller(HookInstallerConfig{}, func() error { panic("boom") }, nil)
	if h.TryInstall() {
		t.Fatal("panicking check reported installed")
	}
}

func TestEnvPermission(t *testing.T) {
	probeErr := fmt.Errorf("probe: %w", ErrPermissionDenied)
	tests := []struct {
		name    string
		env     map[string]string
		probe   PermissionCheck
		granted bool
	}{
		{"override granted", map[string]string{PermissionEnv: "yes"}, func() error { return probeErr }, true},
		{"override denied", map[string]string{PermissionEnv: " Blocked "}, nil, false},
		{"unknown value falls back", map[string]string{PermissionEnv: "maybe"}, func() error { return probeErr }, false},
		{"no override uses probe", nil, func() error { return nil }, true},
		{"no probe grants", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}
			err := EnvPermission(lookup, tt.probe)()
			if tt.granted && err != nil {
				t.Fatalf("expected granted, got %v", err)
			}
			if !tt.granted && !errors.Is(err, ErrPermissionDenied) {
				t.Fatalf("expected ErrPermissionDenied, got %v", err)
			}
		})
	}
}
