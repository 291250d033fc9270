package macro

import (
	"context"
	"sync/atomic"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpw/eruption-roccat-vulcan/internal/plugin"
)

// TestInjectKeySetsDropGateAndEnqueues exercises scenario S2 at the
// plugin boundary: a script calling inject_key(code, down) both claims
// the current key (so the caller's drop gate reads true) and enqueues
// the injected event for the virtual keyboard, as a single action.
func TestInjectKeySetsDropGateAndEnqueues(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	runEngine(t, e, w)

	p := NewPlugin(e)
	L := lua.NewState()
	defer L.Close()

	var gate atomic.Bool
	ctx := &plugin.ScriptContext{DropGate: &gate}
	p.RegisterHostFuncs(L, ctx)

	require.NoError(t, L.DoString(`inject_key(42, true)`))

	assert.True(t, gate.Load())
	got := waitForEvents(t, w, 1)
	assert.Equal(t, uint16(42), got[0].Code)
	assert.Equal(t, int32(1), got[0].Value)
}

// TestInjectKeyIsNoOpWhenEngineNotReady exercises the documented
// Ready() check: once the engine has shut down, inject_key logs and
// does nothing instead of panicking or enqueueing onto a dead engine.
func TestInjectKeyIsNoOpWhenEngineNotReady(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { e.Run(ctx); close(done) }()
	cancel()
	<-done
	require.False(t, e.Ready())

	p := NewPlugin(e)
	L := lua.NewState()
	defer L.Close()

	var gate atomic.Bool
	scriptCtx := &plugin.ScriptContext{DropGate: &gate}
	p.RegisterHostFuncs(L, scriptCtx)

	require.NoError(t, L.DoString(`inject_key(42, true)`))

	assert.False(t, gate.Load())
	assert.Empty(t, w.snapshot())
}
