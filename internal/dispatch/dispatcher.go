// Package dispatch runs workspace, window and volume operations off the input
// path. Every operation is fire-and-forget: failures are logged and never
// retried, and results are handed back on the UI loop.
package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/holdswipe/internal/volume"
	"github.com/1broseidon/holdswipe/internal/wm"
	"github.com/1broseidon/holdswipe/internal/workspace"
	"github.com/google/uuid"
)

// DefaultIndicatorTimeout is how long the volume indicator stays up after the
// last adjustment.
const DefaultIndicatorTimeout = time.Second

// Poster schedules a function on the serialized UI context.
type Poster interface {
	Post(fn func())
}

// Display receives operation results. All methods are called on the UI loop.
type Display interface {
	DirectoryChanged(snap workspace.Snapshot)
	FocusedWorkspaceChanged(id string)
	EntriesLoaded(session uuid.UUID, windows []wm.Window)
	VolumeChanged(session uuid.UUID, percent int)
	VolumeIndicatorExpired()
}

type inline struct{}

func (inline) Post(fn func()) { fn() }

// Config holds the collaborators of a Dispatcher.
type Config struct {
	Manager          wm.Manager
	Volume           volume.Service
	Directory        *workspace.Directory
	UI               Poster
	Logger           *slog.Logger
	IndicatorTimeout time.Duration
}

// Dispatcher executes actions asynchronously.
type Dispatcher struct {
	manager   wm.Manager
	volume    volume.Service
	directory *workspace.Directory
	ui        Poster
	logger    *slog.Logger

	displayMu sync.RWMutex
	display   Display

	dirRefresh   refreshGuard
	focusRefresh refreshGuard

	volumeMu sync.Mutex

	timerMu          sync.Mutex
	indicator        *time.Timer
	indicatorTimeout time.Duration

	wg sync.WaitGroup
}

// refreshGuard keeps at most one refresh in flight. A request that arrives
// while one is running is coalesced into a single rerun.
type refreshGuard struct {
	running atomic.Bool
	again   atomic.Bool
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := cfg.IndicatorTimeout
	if timeout <= 0 {
		timeout = DefaultIndicatorTimeout
	}
	dir := cfg.Directory
	if dir == nil {
		dir = workspace.NewDirectory(nil)
	}
	ui := cfg.UI
	if ui == nil {
		ui = inline{}
	}
	return &Dispatcher{
		manager:          cfg.Manager,
		volume:           cfg.Volume,
		directory:        dir,
		ui:               ui,
		logger:           logger,
		indicatorTimeout: timeout,
	}
}

// SetDisplay registers the result receiver.
func (d *Dispatcher) SetDisplay(display Display) {
	d.displayMu.Lock()
	d.display = display
	d.displayMu.Unlock()
}

// SetIndicatorTimeout changes the volume indicator debounce.
func (d *Dispatcher) SetIndicatorTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultIndicatorTimeout
	}
	d.timerMu.Lock()
	d.indicatorTimeout = timeout
	d.timerMu.Unlock()
}

// Directory returns the workspace directory the dispatcher maintains.
func (d *Dispatcher) Directory() *workspace.Directory {
	return d.directory
}

// Wait blocks until every started operation has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// SetWorkspace switches to id and then refreshes the focused workspace.
func (d *Dispatcher) SetWorkspace(id string) {
	d.goAsync(func(ctx context.Context) {
		_ = d.SwitchWorkspace(ctx, id)
	})
}

// SwitchWorkspace is the blocking form of SetWorkspace.
func (d *Dispatcher) SwitchWorkspace(ctx context.Context, id string) error {
	if d.manager == nil {
		return wm.ErrToolUnavailable
	}
	err := d.manager.SetWorkspace(ctx, id)
	if err != nil {
		d.logFailure("set workspace", err, "workspace", id)
	} else {
		d.logger.Debug("workspace set", "workspace", id)
	}
	d.RefreshFocused()
	return err
}

// StepWorkspace advances one workspace in dir and then refreshes the focused workspace.
func (d *Dispatcher) StepWorkspace(dir wm.Direction, wrap bool) {
	d.goAsync(func(ctx context.Context) {
		_ = d.Step(ctx, dir, wrap)
	})
}

// Step is the blocking form of StepWorkspace.
func (d *Dispatcher) Step(ctx context.Context, dir wm.Direction, wrap bool) error {
	if d.manager == nil {
		return wm.ErrToolUnavailable
	}
	err := d.manager.StepWorkspace(ctx, dir, wrap)
	if err != nil {
		d.logFailure("step workspace", err, "direction", dir.String(), "wrap", wrap)
	} else {
		d.logger.Debug("workspace stepped", "direction", dir.String(), "wrap", wrap)
	}
	d.RefreshFocused()
	return err
}

// FocusEntry focuses window id. When hint is set the workspace is switched
// first; the focus is attempted whatever the outcome of that switch.
func (d *Dispatcher) FocusEntry(id int, hint string) {
	d.goAsync(func(ctx context.Context) {
		if d.manager == nil {
			return
		}
		if hint != "" {
			if err := d.manager.SetWorkspace(ctx, hint); err != nil {
				d.logFailure("focus entry: switch workspace", err, "workspace", hint, "window_id", id)
			}
		}
		if err := d.manager.FocusWindow(ctx, id); err != nil {
			d.logFailure("focus entry", err, "window_id", id)
		}
		d.RefreshFocused()
	})
}

// AdjustVolume changes the output volume by step percent on behalf of
// session. Adjustments are applied one at a time; each restarts the indicator
// timeout.
func (d *Dispatcher) AdjustVolume(session uuid.UUID, step int) {
	d.goAsync(func(ctx context.Context) {
		_, _ = d.changeVolume(ctx, session, step)
	})
}

// ChangeVolume is the blocking form of AdjustVolume. It returns the volume
// read back after the change. The result is reported with uuid.Nil, which
// matches no session.
func (d *Dispatcher) ChangeVolume(ctx context.Context, step int) (int, error) {
	return d.changeVolume(ctx, uuid.Nil, step)
}

func (d *Dispatcher) changeVolume(ctx context.Context, session uuid.UUID, step int) (int, error) {
	if d.volume == nil {
		return 0, volume.ErrUnavailable
	}
	d.volumeMu.Lock()
	defer d.volumeMu.Unlock()

	cur, err := d.volume.Get(ctx)
	if err != nil {
		d.logFailure("read volume", err)
		return 0, err
	}
	target := volume.Clamp(cur + step)
	if target != cur {
		if err := d.volume.Set(ctx, target); err != nil {
			d.logFailure("set volume", err, "percent", target)
			return cur, err
		}
	}

	actual, err := d.volume.Get(ctx)
	if err != nil {
		d.logFailure("re-read volume", err)
		actual = target
	}
	d.logger.Debug("volume adjusted", "step", step, "percent", actual, "session", session.String())

	d.post(func(display Display) { display.VolumeChanged(session, actual) })
	d.restartIndicator()
	return actual, nil
}

// RefreshDirectory reloads the workspace list. A missing manager or an empty
// list publishes the defaults; any other failure keeps the previous list.
func (d *Dispatcher) RefreshDirectory() {
	d.guarded(&d.dirRefresh, func(ctx context.Context) {
		if d.manager == nil {
			d.applyDirectory(nil)
			return
		}
		ids, err := d.manager.ListWorkspaces(ctx)
		if err != nil {
			d.logFailure("refresh workspace directory", err)
			if errors.Is(err, wm.ErrToolUnavailable) {
				d.applyDirectory(nil)
			}
			return
		}
		d.applyDirectory(ids)
	})
}

// RefreshFocused reloads the focused workspace.
func (d *Dispatcher) RefreshFocused() {
	d.guarded(&d.focusRefresh, func(ctx context.Context) {
		if d.manager == nil {
			return
		}
		id, err := d.manager.FocusedWorkspace(ctx)
		if err != nil {
			d.logFailure("refresh focused workspace", err)
			return
		}
		d.ui.Post(func() {
			d.directory.SetCurrent(id)
			if display := d.currentDisplay(); display != nil {
				display.FocusedWorkspaceChanged(id)
			}
		})
	})
}

// LoadEntries fetches the window list for session. A failed or malformed load
// delivers nothing, so the previous entries stay on screen.
func (d *Dispatcher) LoadEntries(session uuid.UUID) {
	d.goAsync(func(ctx context.Context) {
		if d.manager == nil {
			return
		}
		windows, err := d.manager.ListWindows(ctx)
		if err != nil {
			d.logFailure("load window entries", err, "session", session.String())
			return
		}
		d.post(func(display Display) { display.EntriesLoaded(session, windows) })
	})
}

// Stop cancels the pending volume indicator timeout.
func (d *Dispatcher) Stop() {
	d.timerMu.Lock()
	if d.indicator != nil {
		d.indicator.Stop()
	}
	d.timerMu.Unlock()
}

func (d *Dispatcher) applyDirectory(ids []string) {
	d.ui.Post(func() {
		var snap workspace.Snapshot
		if len(ids) == 0 {
			snap = d.directory.Fallback()
		} else {
			snap = d.directory.Apply(ids)
		}
		if display := d.currentDisplay(); display != nil {
			display.DirectoryChanged(snap)
		}
	})
}

func (d *Dispatcher) restartIndicator() {
	d.timerMu.Lock()
	defer d.timerMu.Unlock()

	if d.indicator != nil {
		d.indicator.Stop()
	}
	d.indicator = time.AfterFunc(d.indicatorTimeout, func() {
		d.post(func(display Display) { display.VolumeIndicatorExpired() })
	})
}

func (d *Dispatcher) guarded(g *refreshGuard, fn func(ctx context.Context)) {
	if !g.running.CompareAndSwap(false, true) {
		g.again.Store(true)
		return
	}
	d.goAsync(func(ctx context.Context) {
		for {
			g.again.Store(false)
			fn(ctx)
			if g.again.Load() {
				continue
			}
			g.running.Store(false)
			// A request may have landed between the check and the release.
			if g.again.Load() && g.running.CompareAndSwap(false, true) {
				continue
			}
			return
		}
	})
}

func (d *Dispatcher) goAsync(fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				d.logger.Error("dispatch panic recovered", "error", err)
			}
		}()
		fn(context.Background())
	}()
}

func (d *Dispatcher) post(fn func(display Display)) {
	d.ui.Post(func() {
		if display := d.currentDisplay(); display != nil {
			fn(display)
		}
	})
}

func (d *Dispatcher) currentDisplay() Display {
	d.displayMu.RLock()
	defer d.displayMu.RUnlock()
	return d.display
}

func (d *Dispatcher) logFailure(op string, err error, args ...any) {
	args = append(args, "error", err)
	if errors.Is(err, wm.ErrToolUnavailable) || errors.Is(err, volume.ErrUnavailable) {
		d.logger.Debug(op+" skipped", args...)
		return
	}
	d.logger.Warn(op+" failed", args...)
}
