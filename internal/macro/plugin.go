package macro

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cpw/eruption-roccat-vulcan/internal/plugin"
)

// MacrosPlugin adapts an Engine to the plugin.Plugin contract so the
// compositor and script host can treat macro injection like any other
// registered plugin (spec.md §4.7).
type MacrosPlugin struct {
	engine *Engine
}

// NewPlugin wraps engine for registration in a plugin.Registry.
func NewPlugin(engine *Engine) *MacrosPlugin {
	return &MacrosPlugin{engine: engine}
}

func (p *MacrosPlugin) Name() string { return "macros" }

func (p *MacrosPlugin) Description() string {
	return "mirrors physical key events and injects script-requested key events onto the virtual keyboard"
}

func (p *MacrosPlugin) Initialize(*plugin.ScriptContext) error { return nil }

// MainLoopHook is a no-op: the engine drains its own queue on its own
// goroutine via Run, independent of the compositor's tick.
func (p *MacrosPlugin) MainLoopHook(uint32) {}

// RegisterHostFuncs installs inject_key(code, down) into L. As one
// action it both claims the key currently being dispatched (so the
// macro engine will not also mirror the physical event this upcall
// came from) and enqueues the injected event for the virtual keyboard
// (spec.md §4.4, mirroring callbacks::inject_key in the original
// scripting host). If the engine failed to start, this is a no-op with
// a warning rather than a panic.
func (p *MacrosPlugin) RegisterHostFuncs(L *lua.LState, ctx *plugin.ScriptContext) {
	L.SetGlobal("inject_key", L.NewFunction(func(L *lua.LState) int {
		if !p.engine.Ready() {
			p.engine.Log().Warn("inject_key called while macro engine is not ready, ignoring")
			return 0
		}
		code := L.CheckInt(1)
		down := L.CheckBool(2)
		if ctx != nil && ctx.DropGate != nil {
			ctx.DropGate.Store(true)
		}
		p.engine.Inject(uint16(code), down)
		return 0
	}))
}
