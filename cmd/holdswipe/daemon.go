package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/1broseidon/holdswipe/internal/config"
	"github.com/1broseidon/holdswipe/internal/daemon"
	"github.com/1broseidon/holdswipe/internal/dispatch"
	"github.com/1broseidon/holdswipe/internal/gesture"
	"github.com/1broseidon/holdswipe/internal/holdmode"
	"github.com/1broseidon/holdswipe/internal/ipc"
	"github.com/1broseidon/holdswipe/internal/overlay"
	"github.com/1broseidon/holdswipe/internal/platform"
	"github.com/1broseidon/holdswipe/internal/runtimepath"
	"github.com/1broseidon/holdswipe/internal/uiloop"
	"github.com/1broseidon/holdswipe/internal/volume"
	"github.com/1broseidon/holdswipe/internal/wm"
	"github.com/1broseidon/holdswipe/internal/workspace"
	"github.com/1broseidon/holdswipe/internal/x11"
)

func runDaemon(configPath string) {
	res, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	log.Printf("Configuration loaded (trigger button: %d, workspaces: %s)", cfg.TriggerButton, cfg.Workspaces.Backend)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()
	if !conn.HasXTest() {
		log.Println("Warning: XTest extension missing, short clicks will not be replayed")
	}

	manager, err := newManager(cfg, conn)
	if err != nil {
		log.Fatalf("Failed to create workspace manager: %v", err)
	}

	ui := uiloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ui.Run(ctx)

	directory := workspace.NewDirectory(cfg.Workspaces.Defaults)
	disp := dispatch.New(dispatch.Config{
		Manager:          manager,
		Volume:           volume.NewCLI(cfg.Volume.GetCommand, cfg.Volume.SetCommand),
		Directory:        directory,
		UI:               ui,
		Logger:           logger,
		IndicatorTimeout: cfg.IndicatorTimeout(),
	})
	defer disp.Stop()

	ov, err := overlay.New(cfg.Overlay.Backend, conn, overlayGeometry(cfg))
	if err != nil {
		log.Fatalf("Failed to create overlay: %v", err)
	}

	tags := x11.NewSyntheticTags()
	handler := &deferredHandler{}
	src := x11.NewInputSource(conn, handler, cfg.TriggerButton, tags)
	defer src.Close()

	tracker := holdmode.NewTracker(trackerConfig(cfg), holdmode.Deps{
		Overlay:   ov,
		Actions:   disp,
		Synth:     x11.NewSynthesizer(conn, tags),
		Capture:   src,
		UI:        ui,
		Directory: directory,
	})
	handler.tracker = tracker
	disp.SetDisplay(tracker)

	installer := daemon.NewHookInstaller(daemon.HookInstallerConfig{
		Interval: cfg.PermissionPoll(),
		Logger:   logger,
	}, daemon.EnvPermission(nil, grabProbe(src)), src.Install)
	go func() {
		if err := installer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("input hook installer stopped", "error", err)
		}
	}()

	ctrl := &controller{
		tracker: tracker,
		disp:    disp,
		hook:    installer,
		cfg:     cfg,
	}
	ctrl.apply = func(next *config.Config) {
		applyConfig(next, tracker, src, disp, ov, ui)
	}
	ctrl.load = func() (*config.Config, error) {
		res, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return res.Config, nil
	}

	ipcServer := ipc.NewServer(runtimepath.SocketPath(), ctrl)
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	disp.RefreshDirectory()
	disp.RefreshFocused()

	log.Println("holdswipe daemon started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				if err := ctrl.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				log.Println("Config reloaded successfully")
			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down holdswipe daemon...")
				cancel()
				conn.Quit()
				return
			}
		}
	}()

	// Start event loop (blocking)
	log.Println("Entering event loop...")
	conn.EventLoop()
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newManager(cfg *config.Config, conn *x11.Connection) (wm.Manager, error) {
	switch cfg.Workspaces.Backend {
	case config.BackendEWMH:
		return platform.NewEWMHFromConnection(conn), nil
	case config.BackendCLI, "":
		cli := wm.NewCLI(cfg.Workspaces.Command)
		if !cli.Available() {
			log.Printf("Warning: %s not found in PATH, using default workspaces until it appears", cli.Binary())
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown workspaces backend %q", cfg.Workspaces.Backend)
	}
}

// grabProbe reports a refused trigger grab as a permission problem so the
// installer keeps polling instead of failing.
func grabProbe(src *x11.InputSource) daemon.PermissionCheck {
	return func() error {
		err := src.CheckGrab()
		if errors.Is(err, x11.ErrGrabDenied) {
			return fmt.Errorf("%w: %v", daemon.ErrPermissionDenied, err)
		}
		return err
	}
}

func trackerConfig(cfg *config.Config) holdmode.Config {
	return holdmode.Config{
		TriggerButton: cfg.TriggerButton,
		Thresholds: gesture.Thresholds{
			Exit:        cfg.Gesture.ExitRadius,
			Commit:      cfg.Gesture.CommitRadius,
			ExpandDown:  cfg.Gesture.ExpandDown,
			ScrollUp:    cfg.Gesture.ScrollUp,
			ExpandReset: cfg.Gesture.ExpandResetRadius,
			HubRadius:   cfg.Gesture.HubRadius,
		},
		Layout: gesture.EntryLayout{
			Width:  cfg.Overlay.EntryWidth,
			Height: cfg.Overlay.EntryHeight,
			Gap:    cfg.Overlay.EntryGap,
		},
		ShortClick:        cfg.ShortClick(),
		ScrollSensitivity: cfg.Scroll.Sensitivity,
		ScrollReverse:     cfg.Scroll.Reverse,
		VolumeStep:        cfg.Volume.StepPercent,
	}
}

func overlayGeometry(cfg *config.Config) overlay.Geometry {
	tc := trackerConfig(cfg)
	return overlay.Geometry{Thresholds: tc.Thresholds, Layout: tc.Layout}
}

// geometrySetter is implemented by overlays that draw hit-tested entries.
type geometrySetter interface {
	SetGeometry(geo overlay.Geometry)
}

func applyConfig(cfg *config.Config, tracker *holdmode.Tracker, src *x11.InputSource, disp *dispatch.Dispatcher, ov holdmode.Overlay, ui *uiloop.Loop) {
	tracker.UpdateConfig(trackerConfig(cfg))
	if err := src.SetTrigger(cfg.TriggerButton); err != nil {
		log.Printf("Failed to move grab to button %d: %v", cfg.TriggerButton, err)
	}
	disp.SetIndicatorTimeout(cfg.IndicatorTimeout())
	disp.Directory().SetDefaults(cfg.Workspaces.Defaults)
	if gs, ok := ov.(geometrySetter); ok {
		geo := overlayGeometry(cfg)
		ui.Post(func() { gs.SetGeometry(geo) })
	}
}

// deferredHandler lets the input source be built before the tracker that
// consumes its events. Events arriving before the tracker is set pass through.
type deferredHandler struct {
	tracker *holdmode.Tracker
}

func (h *deferredHandler) HandleEvent(ev holdmode.RawEvent) holdmode.Disposition {
	if h.tracker == nil {
		return holdmode.Disposition{Action: holdmode.PassThrough}
	}
	return h.tracker.HandleEvent(ev)
}

// controller serves the IPC socket from the tracker and dispatcher.
type controller struct {
	tracker *holdmode.Tracker
	disp    *dispatch.Dispatcher
	hook    *daemon.HookInstaller

	mu    sync.Mutex
	cfg   *config.Config
	load  func() (*config.Config, error)
	apply func(cfg *config.Config)
}

var _ ipc.Controller = (*controller)(nil)

func (c *controller) Status() ipc.StatusData {
	st := c.tracker.Status()
	snap := c.disp.Directory().Snapshot()

	data := ipc.StatusData{
		State:            st.State.String(),
		Zone:             st.Zone.String(),
		SessionID:        st.SessionID,
		HeldForMs:        st.HeldFor.Milliseconds(),
		Target:           st.Target,
		CurrentWorkspace: snap.Current,
		Workspaces:       append([]string(nil), snap.IDs...),
		TriggerButton:    c.tracker.Config().TriggerButton,
	}
	if c.hook != nil {
		data.HookInstalled = c.hook.Installed()
		if err := c.hook.LastError(); err != nil && !data.HookInstalled {
			data.HookError = err.Error()
		}
	}
	return data
}

func (c *controller) Workspaces() ipc.WorkspacesData {
	snap := c.disp.Directory().Snapshot()
	return ipc.WorkspacesData{
		Workspaces: append([]string(nil), snap.IDs...),
		Current:    snap.Current,
	}
}

func (c *controller) SetWorkspace(ctx context.Context, id string) error {
	return c.disp.SwitchWorkspace(ctx, id)
}

func (c *controller) StepWorkspace(ctx context.Context, dir wm.Direction, wrap bool) error {
	return c.disp.Step(ctx, dir, wrap)
}

func (c *controller) AdjustVolume(ctx context.Context, step int) (int, error) {
	return c.disp.ChangeVolume(ctx, step)
}

func (c *controller) Refresh() {
	c.disp.RefreshDirectory()
	c.disp.RefreshFocused()
}

// Reload re-reads the config file and applies the settings that can change
// at runtime.
func (c *controller) Reload() error {
	if c.load == nil {
		return errors.New("reload is not supported")
	}
	next, err := c.load()
	if err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.cfg
	c.cfg = next
	c.mu.Unlock()

	for _, key := range restartKeys(prev, next) {
		log.Printf("Warning: %s changed, restart the daemon to apply it", key)
	}
	if c.apply != nil {
		c.apply(next)
	}
	return nil
}

// restartKeys names the settings that only take effect on the next start.
func restartKeys(prev, next *config.Config) []string {
	if prev == nil || next == nil {
		return nil
	}
	var keys []string
	if prev.Display != next.Display {
		keys = append(keys, "display")
	}
	if prev.LogLevel != next.LogLevel {
		keys = append(keys, "log_level")
	}
	if prev.PermissionPollMs != next.PermissionPollMs {
		keys = append(keys, "permission_poll_ms")
	}
	if prev.Workspaces.Backend != next.Workspaces.Backend || prev.Workspaces.Command != next.Workspaces.Command {
		keys = append(keys, "workspaces")
	}
	if !slices.Equal(prev.Volume.GetCommand, next.Volume.GetCommand) || !slices.Equal(prev.Volume.SetCommand, next.Volume.SetCommand) {
		keys = append(keys, "volume commands")
	}
	if prev.Overlay.Backend != next.Overlay.Backend {
		keys = append(keys, "overlay.backend")
	}
	return keys
}
