package wm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrToolUnavailable is returned when the workspace manager cannot be reached
// (binary missing from PATH, no display connection).
var ErrToolUnavailable = errors.New("workspace manager is not available")

// ErrMalformedPayload is returned when manager output cannot be decoded.
var ErrMalformedPayload = errors.New("malformed workspace manager payload")

// Direction selects a relative workspace step.
type Direction int

const (
	DirNext Direction = iota
	DirPrev
)

// String returns the subcommand word for the direction.
func (d Direction) String() string {
	switch d {
	case DirNext:
		return "next"
	case DirPrev:
		return "prev"
	default:
		return "unknown"
	}
}

// Sign returns +1 for next and -1 for prev.
func (d Direction) Sign() int {
	if d == DirPrev {
		return -1
	}
	return 1
}

// Window is one entry of the manager's window list.
type Window struct {
	ID        int    `json:"window-id"`
	AppName   string `json:"app-name"`
	Title     string `json:"window-title"`
	Workspace string `json:"workspace"`
}

// Label returns a single-line description for display.
func (w Window) Label() string {
	title := strings.TrimSpace(w.Title)
	switch {
	case w.AppName == "":
		return title
	case title == "":
		return w.AppName
	default:
		return w.AppName + " - " + title
	}
}

// Manager abstracts workspace and window operations of an external window manager.
type Manager interface {
	ListWorkspaces(ctx context.Context) ([]string, error)
	FocusedWorkspace(ctx context.Context) (string, error)
	SetWorkspace(ctx context.Context, id string) error
	StepWorkspace(ctx context.Context, dir Direction, wrap bool) error
	ListWindows(ctx context.Context) ([]Window, error)
	FocusWindow(ctx context.Context, id int) error
}

// CommandError describes a failed manager invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
