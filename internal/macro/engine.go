// Package macro implements the input-mirroring/injection engine of
// spec.md C3: it owns the uinput virtual keyboard, mirrors raw
// keyboard events onto it unless a script has asserted the drop gate
// for that key, and accepts injected key events from scripts.
package macro

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
	"github.com/cpw/eruption-roccat-vulcan/internal/uinput"
)

// commandQueueCapacity is the spec.md §4.3 channel capacity; beyond
// this, commands are dropped with a warning rather than blocking the
// compositor or an injecting script.
const commandQueueCapacity = 1024

// Writer is the subset of *uinput.Device the engine depends on, so
// tests can substitute a recording fake instead of opening real
// hardware.
type Writer interface {
	Write(ev uinput.InputEvent) error
	Close() error
}

// Engine owns the virtual keyboard device and the single goroutine
// that serializes writes to it.
type Engine struct {
	dev     Writer
	cmds    chan events.MacroCommand
	log     *slog.Logger
	ready   atomic.Bool
	passAll atomic.Bool // passthrough mode: ignore DropGate entirely
	dropped atomic.Uint64
}

// New creates an Engine around dev. The caller owns dev's lifetime
// except that Run closes it on exit.
func New(dev Writer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		dev:  dev,
		cmds: make(chan events.MacroCommand, commandQueueCapacity),
		log:  log,
	}
	e.ready.Store(true)
	return e
}

// Ready reports whether the engine will accept further commands.
func (e *Engine) Ready() bool { return e.ready.Load() }

// Log exposes the engine's logger so the plugin adapter can report a
// rejected inject_key call without the engine needing to know about
// scripts at all.
func (e *Engine) Log() *slog.Logger { return e.log }

// SetPassthrough toggles passthrough mode: while enabled, the engine
// mirrors every raw key event regardless of any script's drop gate.
func (e *Engine) SetPassthrough(enabled bool) { e.passAll.Store(enabled) }

// DroppedCount returns the number of commands discarded so far because
// the queue was full.
func (e *Engine) DroppedCount() uint64 { return e.dropped.Load() }

// Submit enqueues a command, non-blocking. If the queue is full the
// command is dropped and a warning is logged rather than applying
// backpressure to the caller (the compositor or a script goroutine).
func (e *Engine) Submit(cmd events.MacroCommand) {
	if !e.ready.Load() {
		return
	}
	select {
	case e.cmds <- cmd:
	default:
		n := e.dropped.Add(1)
		e.log.Warn("macro command queue full, dropping command", "kind", cmd.Kind, "total_dropped", n)
	}
}

// MirrorUnlessDropped is the entry point the raw input reader calls
// for every physical key event. dropGate, when true and passthrough is
// not forced on, means a script has claimed this key for itself this
// tick and the event must not reach the virtual device.
func (e *Engine) MirrorUnlessDropped(raw events.RawKeyEvent, dropGate *atomic.Bool) {
	if dropGate != nil && dropGate.Load() && !e.passAll.Load() {
		return
	}
	e.Submit(events.Mirror(raw))
}

// Inject is the entry point a script's inject_key host function calls.
func (e *Engine) Inject(code uint16, down bool) {
	e.Submit(events.Inject(code, down))
}

// Run drains the command queue onto the device until ctx is canceled
// or the queue is closed. It owns the device's lifetime: on exit it
// closes dev.
func (e *Engine) Run(ctx context.Context) {
	defer func() {
		e.ready.Store(false)
		if err := e.dev.Close(); err != nil {
			e.log.Warn("closing virtual keyboard device", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-e.cmds:
			if !ok {
				return
			}
			e.apply(cmd)
		}
	}
}

func (e *Engine) apply(cmd events.MacroCommand) {
	var code uint16
	var value int32
	switch cmd.Kind {
	case events.MacroMirror:
		code, value = cmd.Raw.Code, cmd.Raw.Value
	case events.MacroInject:
		code = cmd.Code
		if cmd.Down {
			value = 1
		}
	default:
		return
	}

	if err := e.dev.Write(uinput.InputEvent{Type: uinput.EV_KEY, Code: code, Value: value}); err != nil {
		e.log.Warn("writing to virtual keyboard device", "error", err, "code", code)
	}
}
