// Package plugin defines the contract host-function bundles register
// against (spec.md C7). The macro engine is itself a plugin under this
// model; a script host installs every registered plugin's host
// functions once at script startup and the compositor invokes every
// plugin's MainLoopHook once per tick.
package plugin

import (
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/cpw/eruption-roccat-vulcan/internal/colormodel"
)

// ScriptContext is the set of daemon-owned resources a plugin's
// RegisterHostFuncs closures are allowed to touch. It is handed to
// every plugin identically; plugins must not retain it beyond the call
// that provided it without understanding its lifetime is the daemon's.
type ScriptContext struct {
	NumKeys    int
	GridCols   int
	GridRows   int
	Global     *colormodel.GlobalFrame
	Brightness *atomic.Int32

	// DropGate is set by a script during a key upcall and cleared by
	// the compositor strictly after that upcall completes (spec.md §4.3/§4.5).
	DropGate *atomic.Bool
}

// Plugin is anything that exposes the spec.md §4.7 contract.
type Plugin interface {
	Name() string
	Description() string
	Initialize(ctx *ScriptContext) error
	RegisterHostFuncs(L *lua.LState, ctx *ScriptContext)
	MainLoopHook(tick uint32)
}

// Registry is a read-mostly collection of Plugins, consulted once per
// script startup and once per tick.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a plugin under the registry's write lock. Plugins are
// expected to be registered once at daemon startup before any script
// loads.
func (r *Registry) Add(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)
}

// All returns a snapshot of the registered plugins.
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// InstallHostFuncs calls RegisterHostFuncs on every plugin against L,
// once per script startup.
func (r *Registry) InstallHostFuncs(L *lua.LState, ctx *ScriptContext) {
	for _, p := range r.All() {
		p.RegisterHostFuncs(L, ctx)
	}
}

// InitializeAll calls Initialize on every registered plugin, in
// registration order, once at daemon startup before any script loads.
// The first error returned by a plugin aborts the remaining ones.
func (r *Registry) InitializeAll(ctx *ScriptContext) error {
	for _, p := range r.All() {
		if err := p.Initialize(ctx); err != nil {
			return err
		}
	}
	return nil
}

// MainLoopHookAll calls MainLoopHook(tick) on every plugin, once per
// compositor tick.
func (r *Registry) MainLoopHookAll(tick uint32) {
	for _, p := range r.All() {
		p.MainLoopHook(tick)
	}
}
