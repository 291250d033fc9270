package compositor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cpw/eruption-roccat-vulcan/internal/colormodel"
	"github.com/cpw/eruption-roccat-vulcan/internal/events"
	"github.com/cpw/eruption-roccat-vulcan/internal/plugin"
	"github.com/cpw/eruption-roccat-vulcan/internal/script"
)

// defaultBarrierTimeout is the spec.md §4.5 bound on how long the
// compositor waits for scripts to finish a RealizeColorMap round
// before presenting with whatever made it in time.
const defaultBarrierTimeout = 250 * time.Millisecond

// defaultDeviceSettle is the pause between render ticks. Immediate
// presents from set_key_color/set_color_map are not delayed by it.
const defaultDeviceSettle = 10 * time.Millisecond

// Presenter is the device-facing sink the compositor writes composited
// frames to.
type Presenter interface {
	Present(f colormodel.Frame) error
}

// Config carries the tunables the daemon wires in at startup.
type Config struct {
	NumKeys        int
	BarrierTimeout time.Duration
	DeviceSettle   time.Duration
}

// Compositor owns the shared global frame, the per-tick barrier, and
// the presentation cadence.
type Compositor struct {
	cfg Config

	global     *colormodel.GlobalFrame
	brightness *atomic.Int32
	dropGate   *atomic.Bool

	scripts *script.Registry
	plugins *plugin.Registry
	bus     interface {
		Notify(events.Event) error
	}
	presenter Presenter
	log       *slog.Logger

	latch *Latch

	presentMu sync.Mutex // serializes Present against PresentPixel/PresentFrame
	tick      atomic.Uint32
}

// New creates a Compositor, filling in the default barrier timeout and
// device settle time where cfg leaves them unset.
func New(cfg Config, scripts *script.Registry, plugins *plugin.Registry, presenter Presenter, log *slog.Logger) *Compositor {
	if cfg.BarrierTimeout <= 0 {
		cfg.BarrierTimeout = defaultBarrierTimeout
	}
	if cfg.DeviceSettle <= 0 {
		cfg.DeviceSettle = defaultDeviceSettle
	}
	if log == nil {
		log = slog.Default()
	}
	var brightness atomic.Int32
	brightness.Store(colormodel.MaxBrightness)

	return &Compositor{
		cfg:        cfg,
		global:     colormodel.NewGlobalFrame(cfg.NumKeys),
		brightness: &brightness,
		dropGate:   &atomic.Bool{},
		scripts:    scripts,
		plugins:    plugins,
		presenter:  presenter,
		log:        log,
		latch:      NewLatch(),
	}
}

// Global exposes the shared frame so a daemon can hand it to newly
// loaded scripts via plugin.ScriptContext.
func (c *Compositor) Global() *colormodel.GlobalFrame { return c.global }

// Brightness exposes the shared brightness control.
func (c *Compositor) Brightness() *atomic.Int32 { return c.brightness }

// DropGate exposes the shared drop gate scripts assert during key
// upcalls.
func (c *Compositor) DropGate() *atomic.Bool { return c.dropGate }

// Latch exposes the compositor's per-round barrier so scripts can Ack
// it without the script package importing compositor.
func (c *Compositor) Latch() *Latch { return c.latch }

// SetBrightness clamps and stores a new global brightness level.
func (c *Compositor) SetBrightness(level int32) {
	if level < 0 {
		level = 0
	}
	if level > colormodel.MaxBrightness {
		level = colormodel.MaxBrightness
	}
	c.brightness.Store(level)
}

// Run drives the tick loop until ctx is canceled.
func (c *Compositor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.renderOneTick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.DeviceSettle):
		}
	}
}

func (c *Compositor) renderOneTick(ctx context.Context) {
	tick := c.tick.Add(1)

	n := c.scripts.Count()
	c.latch.Reset(n)
	c.scripts.Broadcast(script.TickMessage(tick))
	c.waitBarrier(ctx, "tick")

	c.plugins.MainLoopHookAll(tick)

	c.latch.Reset(n)
	c.scripts.Broadcast(script.RealizeColorMapMessage())
	c.waitBarrier(ctx, "realize_color_map")

	snapshot := c.global.Snapshot()
	if err := c.present(snapshot); err != nil {
		c.log.Warn("present failed", "error", err)
	}
}

func (c *Compositor) waitBarrier(ctx context.Context, phase string) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	stop := make(chan struct{})
	var once sync.Once
	fire := func() { once.Do(func() { close(stop) }) }
	timer := time.AfterFunc(c.cfg.BarrierTimeout, fire)
	defer timer.Stop()
	unhook := context.AfterFunc(ctx, fire)
	defer unhook()

	if !c.latch.Wait(stop) {
		c.log.Warn("frame miss: barrier timed out, reusing previous frame contribution", "phase", phase)
	}
}

func (c *Compositor) present(f colormodel.Frame) error {
	c.presentMu.Lock()
	defer c.presentMu.Unlock()
	return c.presenter.Present(f)
}

// PresentPixel implements script.ImmediatePresenter: set_key_color
// writes straight through to the global frame and the device,
// bypassing the per-tick barrier.
func (c *Compositor) PresentPixel(index int, packedRGB uint32) error {
	if index < 0 || index >= c.cfg.NumKeys {
		return nil
	}
	c.global.Set(index, colormodel.UnpackRGB(packedRGB))
	return c.present(c.global.Snapshot())
}

// PresentFrame implements script.ImmediatePresenter for set_color_map.
func (c *Compositor) PresentFrame(packedRGB []uint32) error {
	f := colormodel.NewFrame(c.cfg.NumKeys)
	for i := range f {
		if i < len(packedRGB) {
			f[i] = colormodel.UnpackRGB(packedRGB[i])
		}
	}
	c.global.Replace(f)
	return c.present(f)
}

// RequestKeyUpcall delivers a single key transition to every script
// and waits (bounded by the barrier timeout) for all of them to
// finish before reporting whether any script claimed the key — the
// macro engine must not decide whether to mirror the raw event until
// this returns. The drop gate is cleared as the last step, strictly
// after that decision has been read (spec.md §4.3/§4.5 key-upcall
// protocol).
func (c *Compositor) RequestKeyUpcall(ctx context.Context, down bool, code uint8) (dropped bool) {
	c.dropGate.Store(false)

	n := c.scripts.Count()
	c.latch.Reset(n)
	if down {
		c.scripts.Broadcast(script.KeyDownMessage(code))
	} else {
		c.scripts.Broadcast(script.KeyUpMessage(code))
	}
	c.waitBarrier(ctx, "key_upcall")

	dropped = c.dropGate.Load()
	c.dropGate.Store(false)
	return dropped
}
