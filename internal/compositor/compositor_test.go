package compositor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpw/eruption-roccat-vulcan/internal/colormodel"
	"github.com/cpw/eruption-roccat-vulcan/internal/macro"
	"github.com/cpw/eruption-roccat-vulcan/internal/plugin"
	"github.com/cpw/eruption-roccat-vulcan/internal/script"
	"github.com/cpw/eruption-roccat-vulcan/internal/uinput"
)

// noopMacroWriter discards every event; it stands in for a real
// uinput.Device so the macro engine's inject_key plumbing can be
// exercised without privileged hardware access.
type noopMacroWriter struct{}

func (noopMacroWriter) Write(uinput.InputEvent) error { return nil }
func (noopMacroWriter) Close() error                  { return nil }

type recordingPresenter struct {
	mu     sync.Mutex
	frames []colormodel.Frame
}

func (p *recordingPresenter) Present(f colormodel.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, f.Clone())
	return nil
}

func (p *recordingPresenter) last() colormodel.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return nil
	}
	return p.frames[len(p.frames)-1]
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestTwoScriptsBlendIntoSameGlobalFrame exercises scenario S3: two
// scripts each submit a semi-transparent layer for the same key and
// the presented frame reflects both, blended in load order.
func TestTwoScriptsBlendIntoSameGlobalFrame(t *testing.T) {
	scripts := script.NewRegistry()
	plugins := plugin.NewRegistry()
	presenter := &recordingPresenter{}
	c := New(Config{NumKeys: 1}, scripts, plugins, presenter, nil)

	loadScript := func(name, body string) *script.Host {
		ctx := &plugin.ScriptContext{NumKeys: 1, Global: c.Global(), Brightness: c.Brightness(), DropGate: c.DropGate()}
		h, err := script.Load(name, script.Options{
			ScriptPath: writeScript(t, body),
			NumKeys:    1,
			Ctx:        ctx,
			Latch:      c.latch,
			Presenter:  c,
		})
		require.NoError(t, err)
		return h
	}

	a := loadScript("a", `
function on_tick(t)
  local m = get_color_map()
  m[1] = rgba_to_color(255, 0, 0, 128)
  submit_color_map(m)
end
`)
	b := loadScript("b", `
function on_tick(t)
  local m = get_color_map()
  m[1] = rgba_to_color(0, 0, 255, 128)
  submit_color_map(m)
end
`)

	scripts.Add(a)
	scripts.Add(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	c.renderOneTick(ctx)

	deadline := time.Now().Add(time.Second)
	for presenter.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Greater(t, presenter.count(), 0)

	got := c.Global().Get(0)
	assert.Equal(t, uint8(64), got.R)
	assert.Equal(t, uint8(128), got.B)
}

func TestBarrierTimeoutStillPresentsPreviousContribution(t *testing.T) {
	scripts := script.NewRegistry()
	plugins := plugin.NewRegistry()
	presenter := &recordingPresenter{}
	c := New(Config{NumKeys: 1, BarrierTimeout: 20 * time.Millisecond}, scripts, plugins, presenter, nil)

	// A script registered but never run: its control channel is never
	// drained, so its Ack never arrives and the round must time out
	// rather than hang.
	ctx := &plugin.ScriptContext{NumKeys: 1, Global: c.Global(), Brightness: c.Brightness()}
	h, err := script.Load("stalled", script.Options{
		ScriptPath: writeScript(t, `function on_tick(t) end`),
		NumKeys:    1,
		Ctx:        ctx,
		Latch:      c.latch,
	})
	require.NoError(t, err)
	scripts.Add(h)

	runCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	c.renderOneTick(runCtx)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, presenter.count())
	assert.Equal(t, colormodel.Frame{{}}, presenter.last())
}

func TestPresentPixelWritesThroughImmediately(t *testing.T) {
	scripts := script.NewRegistry()
	plugins := plugin.NewRegistry()
	presenter := &recordingPresenter{}
	c := New(Config{NumKeys: 2}, scripts, plugins, presenter, nil)

	require.NoError(t, c.PresentPixel(1, colormodel.PackRGB(colormodel.Pixel{R: 10, G: 20, B: 30})))

	assert.Equal(t, uint8(10), c.Global().Get(1).R)
	assert.Equal(t, 1, presenter.count())
}

// TestRequestKeyUpcallReportsDropWhenScriptClaimsKey exercises
// scenario S2: a script that calls inject_key during on_key_down claims
// the original key for itself, causing RequestKeyUpcall to report it
// as dropped.
func TestRequestKeyUpcallReportsDropWhenScriptClaimsKey(t *testing.T) {
	scripts := script.NewRegistry()
	plugins := plugin.NewRegistry()
	engine := macro.New(noopMacroWriter{}, nil)
	plugins.Add(macro.NewPlugin(engine))
	c := New(Config{NumKeys: 1}, scripts, plugins, &recordingPresenter{}, nil)

	ctx := &plugin.ScriptContext{NumKeys: 1, Global: c.Global(), Brightness: c.Brightness(), DropGate: c.DropGate()}
	h, err := script.Load("claimer", script.Options{
		ScriptPath: writeScript(t, `function on_key_down(code) inject_key(42, true) end`),
		NumKeys:    1,
		Ctx:        ctx,
		Latch:      c.latch,
		Plugins:    plugins,
	})
	require.NoError(t, err)
	scripts.Add(h)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(runCtx)

	dropped := c.RequestKeyUpcall(runCtx, true, 30)
	assert.True(t, dropped)
	assert.False(t, c.DropGate().Load(), "gate must be cleared after the decision is read")
}

func TestSetBrightnessClampsRange(t *testing.T) {
	scripts := script.NewRegistry()
	plugins := plugin.NewRegistry()
	c := New(Config{NumKeys: 1}, scripts, plugins, &recordingPresenter{}, nil)

	c.SetBrightness(500)
	assert.Equal(t, int32(colormodel.MaxBrightness), c.Brightness().Load())

	c.SetBrightness(-5)
	assert.Equal(t, int32(0), c.Brightness().Load())
}
