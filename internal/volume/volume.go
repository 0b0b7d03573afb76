// Package volume reads and writes the system output volume through
// configurable external commands.
package volume

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// PercentPlaceholder is replaced by the target volume in set commands.
const PercentPlaceholder = "{{percent}}"

// ErrUnavailable is returned when the volume command is not installed.
var ErrUnavailable = errors.New("volume command is not available")

// DefaultGetCommand queries the default PulseAudio/PipeWire sink.
func DefaultGetCommand() []string {
	return []string{"pactl", "get-sink-volume", "@DEFAULT_SINK@"}
}

// DefaultSetCommand sets the default sink volume.
func DefaultSetCommand() []string {
	return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", PercentPlaceholder + "%"}
}

// Service abstracts the output volume.
type Service interface {
	Get(ctx context.Context) (int, error)
	Set(ctx context.Context, percent int) error
}

// CLI implements Service by running argv templates.
type CLI struct {
	getArgv []string
	setArgv []string
}

var _ Service = (*CLI)(nil)

// NewCLI creates a CLI service. Empty commands fall back to the pactl defaults.
func NewCLI(getArgv, setArgv []string) *CLI {
	if len(getArgv) == 0 {
		getArgv = DefaultGetCommand()
	}
	if len(setArgv) == 0 {
		setArgv = DefaultSetCommand()
	}
	return &CLI{
		getArgv: append([]string(nil), getArgv...),
		setArgv: append([]string(nil), setArgv...),
	}
}

// Get returns the current volume in percent.
func (c *CLI) Get(ctx context.Context) (int, error) {
	out, err := run(ctx, c.getArgv)
	if err != nil {
		return 0, err
	}
	return ParsePercent(out)
}

// Set writes percent, clamped to [0, 100].
func (c *CLI) Set(ctx context.Context, percent int) error {
	percent = Clamp(percent)
	argv := make([]string, len(c.setArgv))
	for i, a := range c.setArgv {
		argv[i] = strings.ReplaceAll(a, PercentPlaceholder, strconv.Itoa(percent))
	}
	_, err := run(ctx, argv)
	return err
}

// Clamp bounds percent to [0, 100].
func Clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	bareRe    = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*$`)
)

// ParsePercent extracts the first percentage from command output. A bare
// number is accepted as a percentage too, and a value in [0, 1] with a
// decimal point is treated as a fraction (wpctl style "Volume: 0.40").
func ParsePercent(out string) (int, error) {
	if m := percentRe.FindStringSubmatch(out); m != nil {
		return toPercent(m[1], false)
	}
	if m := bareRe.FindStringSubmatch(out); m != nil {
		return toPercent(m[1], true)
	}
	if idx := strings.LastIndex(out, ":"); idx >= 0 {
		if m := bareRe.FindStringSubmatch(out[idx+1:]); m != nil {
			return toPercent(m[1], true)
		}
	}
	return 0, fmt.Errorf("no volume percentage in output %q", strings.TrimSpace(out))
}

func toPercent(s string, allowFraction bool) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse volume %q: %w", s, err)
	}
	if allowFraction && strings.Contains(s, ".") && v <= 1 {
		v *= 100
	}
	return Clamp(int(v + 0.5)), nil
}

func run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty volume command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, argv[0])
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", strings.Join(argv, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
