package script

import (
	"fmt"
	"log/slog"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/cpw/eruption-roccat-vulcan/internal/colormodel"
	"github.com/cpw/eruption-roccat-vulcan/internal/config"
	"github.com/cpw/eruption-roccat-vulcan/internal/plugin"
)

// libSearchPath is appended to package.path so scripts can require
// shared modules (spec.md §4.4).
const libSearchPath = "src/scripts/lib/?.lua"

// Descriptor is the static identity of a loaded script, independent of
// its running state.
type Descriptor struct {
	Name       string
	ScriptPath string
	LoadedAt   time.Time
}

// Host is one running script: its Lua VM, its local key-color frame,
// and the goroutine draining its control channel.
type Host struct {
	Descriptor

	numKeys int
	local   colormodel.Frame

	L         *lua.LState
	ctx       *plugin.ScriptContext
	latch     Latch
	presenter ImmediatePresenter
	profile   config.Profile
	plugins   *plugin.Registry
	log       *slog.Logger

	control chan Message

	terminatedGracefully bool
}

// Options carries everything a Host needs beyond the script's own
// source, mirroring the collaborators a running script can reach.
type Options struct {
	ScriptPath string
	NumKeys    int
	Ctx        *plugin.ScriptContext
	Latch      Latch
	Presenter  ImmediatePresenter
	Profile    config.Profile
	Plugins    *plugin.Registry
	Logger     *slog.Logger
	QueueDepth int
}

// Load reads and compiles a script file, installs its host
// environment, and returns a Host ready for Run. It does not start the
// script's goroutine.
func Load(name string, opts Options) (*Host, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 64
	}

	L := lua.NewState()
	L.SetGlobal("package_path_lib", lua.LString(libSearchPath))
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		existing := lua.LVAsString(pkg.RawGetString("path"))
		pkg.RawSetString("path", lua.LString(existing+";"+libSearchPath))
	}

	h := &Host{
		Descriptor: Descriptor{Name: name, ScriptPath: opts.ScriptPath, LoadedAt: time.Now()},
		numKeys:    opts.NumKeys,
		local:      colormodel.NewFrame(opts.NumKeys),
		L:          L,
		ctx:        opts.Ctx,
		latch:      opts.Latch,
		presenter:  opts.Presenter,
		profile:    opts.Profile,
		plugins:    opts.Plugins,
		log:        opts.Logger.With("script", name),
		control:    make(chan Message, opts.QueueDepth),
	}

	h.installHostFuncs()
	if h.plugins != nil {
		h.plugins.InstallHostFuncs(L, h.ctx)
	}

	if err := L.DoFile(opts.ScriptPath); err != nil {
		L.Close()
		return nil, fmt.Errorf("script: load %q: %w", opts.ScriptPath, err)
	}

	return h, nil
}

// Control returns the channel the compositor and other subsystems send
// Messages on.
func (h *Host) Control() chan<- Message { return h.control }

// TerminatedGracefully reports whether Unload ran to completion rather
// than the goroutine being abandoned mid-message.
func (h *Host) TerminatedGracefully() bool { return h.terminatedGracefully }
