// Package daemon wires the whole process together: config and profile
// resolution, the event bus, the macro engine and virtual keyboard,
// the script registry, and the compositor render loop (spec.md §2).
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cpw/eruption-roccat-vulcan/internal/colormodel"
	"github.com/cpw/eruption-roccat-vulcan/internal/compositor"
	"github.com/cpw/eruption-roccat-vulcan/internal/config"
	"github.com/cpw/eruption-roccat-vulcan/internal/eventbus"
	"github.com/cpw/eruption-roccat-vulcan/internal/events"
	"github.com/cpw/eruption-roccat-vulcan/internal/inputreader"
	"github.com/cpw/eruption-roccat-vulcan/internal/macro"
	"github.com/cpw/eruption-roccat-vulcan/internal/plugin"
	"github.com/cpw/eruption-roccat-vulcan/internal/script"
	"github.com/cpw/eruption-roccat-vulcan/internal/uinput"
)

// Options carries everything an operator can configure at startup.
type Options struct {
	NumKeys        int
	GridCols       int
	GridRows       int
	ProfileDir     string
	ActiveProfile  string
	ScriptDir      string
	KeyboardDevice string
	BarrierTimeout time.Duration
	DeviceSettle   time.Duration
	Logger         *slog.Logger
}

// Daemon is the top-level supervisor.
type Daemon struct {
	opts Options
	log  *slog.Logger

	bus         *eventbus.Bus
	loader      *config.Loader
	profile     *config.StaticProfile
	watcher     *config.Watcher
	device      *uinput.Device
	macroEngine *macro.Engine
	scripts     *script.Registry
	plugins     *plugin.Registry
	compositor  *compositor.Compositor
	inputReader *inputreader.Reader

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New wires every subsystem together. Apart from the profile watcher,
// which starts watching immediately, nothing runs until Run is called.
func New(opts Options) (*Daemon, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NumKeys <= 0 {
		return nil, fmt.Errorf("daemon: NumKeys must be positive")
	}

	d := &Daemon{opts: opts, log: opts.Logger}

	d.bus = eventbus.New()
	d.bus.Register(d.logEvent)

	d.loader = config.NewLoader(opts.ProfileDir)
	if err := d.loader.EnsureDir(); err != nil {
		return nil, fmt.Errorf("daemon: profile dir: %w", err)
	}

	profile, err := d.loadOrInitProfile(opts.ActiveProfile)
	if err != nil {
		return nil, err
	}
	d.profile = profile

	watcher, err := config.NewWatcher(opts.ProfileDir, d.bus, d.log)
	if err != nil {
		return nil, fmt.Errorf("daemon: profile watcher: %w", err)
	}
	d.watcher = watcher

	dev, err := uinput.Open()
	if err != nil {
		return nil, fmt.Errorf("daemon: virtual keyboard: %w", err)
	}
	d.device = dev
	d.macroEngine = macro.New(dev, d.log)

	d.plugins = plugin.NewRegistry()
	d.plugins.Add(macro.NewPlugin(d.macroEngine))

	d.scripts = script.NewRegistry()

	presenter := &nullPresenter{}
	d.compositor = compositor.New(compositor.Config{
		NumKeys:        opts.NumKeys,
		BarrierTimeout: opts.BarrierTimeout,
		DeviceSettle:   opts.DeviceSettle,
	}, d.scripts, d.plugins, presenter, d.log)

	if err := d.plugins.InitializeAll(&plugin.ScriptContext{
		NumKeys:    opts.NumKeys,
		GridCols:   opts.GridCols,
		GridRows:   opts.GridRows,
		Global:     d.compositor.Global(),
		Brightness: d.compositor.Brightness(),
		DropGate:   d.compositor.DropGate(),
	}); err != nil {
		return nil, fmt.Errorf("daemon: plugin initialize: %w", err)
	}

	if opts.KeyboardDevice != "" {
		reader, err := inputreader.Open(opts.KeyboardDevice, d.log)
		if err != nil {
			return nil, fmt.Errorf("daemon: keyboard device: %w", err)
		}
		d.inputReader = reader
	}

	return d, nil
}

func (d *Daemon) loadOrInitProfile(name string) (*config.StaticProfile, error) {
	if name == "" {
		name = "default"
	}
	path := filepath.Join(d.opts.ProfileDir, name+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(`{"scripts":{}}`), 0o644); err != nil {
			return nil, fmt.Errorf("daemon: seed default profile: %w", err)
		}
	}
	return d.loader.Load(name)
}

func (d *Daemon) logEvent(evt events.Event) error {
	d.log.Debug("event", "kind", evt.Kind, "seq", evt.Seq, "path", evt.Path)
	return nil
}

// Profile returns the currently active profile's resolver.
func (d *Daemon) Profile() config.Profile { return d.profile }

// LoadScript loads a script file by name and registers it against the
// shared compositor state.
func (d *Daemon) LoadScript(name, path string) error {
	ctx := &plugin.ScriptContext{
		NumKeys:    d.opts.NumKeys,
		GridCols:   d.opts.GridCols,
		GridRows:   d.opts.GridRows,
		Global:     d.compositor.Global(),
		Brightness: d.compositor.Brightness(),
		DropGate:   d.compositor.DropGate(),
	}
	h, err := script.Load(name, script.Options{
		ScriptPath: path,
		NumKeys:    d.opts.NumKeys,
		Ctx:        ctx,
		Latch:      d.latchAdapter(),
		Presenter:  d.compositor,
		Profile:    d.profile,
		Plugins:    d.plugins,
		Logger:     d.log,
	})
	if err != nil {
		return err
	}
	d.scripts.Add(h)

	ctx2, cancel := context.WithCancel(context.Background())
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		h.Run(ctx2)
	}()
	return nil
}

// latchAdapter exposes the compositor's internal barrier through the
// script.Latch interface without the script package importing
// compositor.
func (d *Daemon) latchAdapter() script.Latch {
	return d.compositor.Latch()
}

// Run starts the macro engine, compositor tick loop, and (if
// configured) the raw input reader, and blocks until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.bus.Notify(events.DaemonStartup()); err != nil {
		return fmt.Errorf("daemon: startup observers: %w", err)
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.macroEngine.Run(runCtx)
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.compositor.Run(runCtx)
	}()

	if d.inputReader != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.inputReader.Run(func(raw events.RawKeyEvent) {
				dropped := d.compositor.RequestKeyUpcall(runCtx, raw.Down(), uint8(raw.Code))
				var gate atomic.Bool
				gate.Store(dropped)
				d.macroEngine.MirrorUnlessDropped(raw, &gate)
			})
		}()
	}

	<-runCtx.Done()
	return d.shutdown()
}

// Shutdown cancels the daemon's run context and returns at once; Run
// then stops every subsystem before it returns.
func (d *Daemon) Shutdown() {
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Daemon) shutdown() error {
	d.scripts.Broadcast(script.UnloadMessage())
	if d.inputReader != nil {
		d.inputReader.Close()
	}
	d.wg.Wait()

	if d.watcher != nil {
		d.watcher.Close()
	}
	return d.bus.Notify(events.DaemonShutdown())
}

// nullPresenter discards frames; used until the daemon is handed a
// real device-backed presenter (the virtual keyboard carries no
// lighting surface of its own — presentation targets whatever RGB
// hardware transport the caller wires in place of this stub).
type nullPresenter struct{}

func (nullPresenter) Present(_ colormodel.Frame) error { return nil }
