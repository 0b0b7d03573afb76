package wm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBinary is the manager CLI invoked when none is configured.
const DefaultBinary = "aerospace"

const windowFormat = "%{window-id} %{app-name} %{window-title} %{workspace}"

// benignStderr lists stderr fragments that do not indicate a failure.
var benignStderr = []string{
	"incomplete request",
}

// CLI drives a workspace manager through its command-line interface.
type CLI struct {
	binary string
}

var _ Manager = (*CLI)(nil)

// NewCLI creates a CLI-backed manager for binary (DefaultBinary when empty).
func NewCLI(binary string) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLI{binary: binary}
}

// Binary returns the configured executable name.
func (c *CLI) Binary() string {
	return c.binary
}

// Available returns true if the manager binary is installed
func (c *CLI) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// ListWorkspaces returns all workspace identifiers in manager order.
func (c *CLI) ListWorkspaces(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "list-workspaces", "--all")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// FocusedWorkspace returns the identifier of the focused workspace.
func (c *CLI) FocusedWorkspace(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "list-workspaces", "--focused")
	if err != nil {
		return "", err
	}
	lines := splitLines(out)
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: empty focused workspace", ErrMalformedPayload)
	}
	return lines[0], nil
}

// SetWorkspace switches to the workspace id.
func (c *CLI) SetWorkspace(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("workspace id must not be empty")
	}
	_, err := c.run(ctx, "workspace", id)
	return err
}

// StepWorkspace switches to the next or previous workspace.
func (c *CLI) StepWorkspace(ctx context.Context, dir Direction, wrap bool) error {
	args := []string{"workspace", dir.String()}
	if wrap {
		args = append(args, "--wrap-around")
	}
	_, err := c.run(ctx, args...)
	return err
}

// ListWindows returns every window known to the manager.
func (c *CLI) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := c.run(ctx, "list-windows", "--all", "--json", "--format", windowFormat)
	if err != nil {
		return nil, err
	}
	return decodeWindows(out)
}

// FocusWindow focuses the window with the given id.
func (c *CLI) FocusWindow(ctx context.Context, id int) error {
	_, err := c.run(ctx, "focus", "--window-id", strconv.Itoa(id))
	return err
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(c.binary); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrToolUnavailable, c.binary)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	msg := strings.TrimSpace(stderr.String())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if isBenign(msg) {
			return stdout.Bytes(), nil
		}
		return nil, &CommandError{
			Args:     append([]string{c.binary}, args...),
			ExitCode: exitErr.ExitCode(),
			Stderr:   msg,
			Err:      err,
		}
	}
	return nil, fmt.Errorf("%s %s failed: %w", c.binary, strings.Join(args, " "), err)
}

// isBenign reports whether every non-empty stderr line is a known harmless warning.
func isBenign(stderr string) bool {
	if stderr == "" {
		return false
	}
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		known := false
		for _, frag := range benignStderr {
			if strings.Contains(line, frag) {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

func splitLines(out []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func decodeWindows(out []byte) ([]Window, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var windows []Window
	if err := json.Unmarshal(trimmed, &windows); err != nil {
		return nil, fmt.Errorf("%w: decode window list: %v", ErrMalformedPayload, err)
	}
	return windows, nil
}
