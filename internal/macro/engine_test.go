package macro

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
	"github.com/cpw/eruption-roccat-vulcan/internal/uinput"
)

type fakeWriter struct {
	mu     sync.Mutex
	events []uinput.InputEvent
	closed bool
}

func (f *fakeWriter) Write(ev uinput.InputEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWriter) snapshot() []uinput.InputEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uinput.InputEvent, len(f.events))
	copy(out, f.events)
	return out
}

func runEngine(t *testing.T, e *Engine, w *fakeWriter) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { e.Run(ctx); close(done) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func waitForEvents(t *testing.T, w *fakeWriter, n int) []uinput.InputEvent {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if got := w.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %d", n, len(w.snapshot()))
	return nil
}

// TestMirrorPassthroughForwardsRawEvents exercises scenario S1: with no
// script asserting the drop gate, a raw key event is mirrored onto the
// virtual device unchanged.
func TestMirrorPassthroughForwardsRawEvents(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	runEngine(t, e, w)

	var gate atomic.Bool
	e.MirrorUnlessDropped(events.RawKeyEvent{Code: 30, Value: 1}, &gate)

	got := waitForEvents(t, w, 1)
	assert.Equal(t, uint16(30), got[0].Code)
	assert.Equal(t, int32(1), got[0].Value)
}

// TestDropGateSuppressesMirroring exercises scenario S2: a script that
// has claimed a key for itself this tick prevents that key's raw event
// from reaching the virtual keyboard.
func TestDropGateSuppressesMirroring(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	runEngine(t, e, w)

	var gate atomic.Bool
	gate.Store(true)
	e.MirrorUnlessDropped(events.RawKeyEvent{Code: 30, Value: 1}, &gate)

	// Prove forward progress still happens so the absence of the
	// dropped event isn't just "nothing ran yet".
	e.MirrorUnlessDropped(events.RawKeyEvent{Code: 31, Value: 1}, &atomic.Bool{})
	got := waitForEvents(t, w, 1)

	assert.Len(t, got, 1)
	assert.Equal(t, uint16(31), got[0].Code)
}

func TestSetPassthroughOverridesDropGate(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	e.SetPassthrough(true)
	runEngine(t, e, w)

	var gate atomic.Bool
	gate.Store(true)
	e.MirrorUnlessDropped(events.RawKeyEvent{Code: 30, Value: 1}, &gate)

	got := waitForEvents(t, w, 1)
	assert.Equal(t, uint16(30), got[0].Code)
}

func TestInjectEnqueuesKeyEvent(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	runEngine(t, e, w)

	e.Inject(42, true)

	got := waitForEvents(t, w, 1)
	assert.Equal(t, uint16(42), got[0].Code)
	assert.Equal(t, int32(1), got[0].Value)
}

func TestSubmitDropsWhenQueueFullRatherThanBlocking(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	// Fill the queue without a consumer draining it.
	for i := 0; i < commandQueueCapacity; i++ {
		e.Submit(events.Inject(1, true))
	}
	e.Submit(events.Inject(2, true))

	assert.Equal(t, uint64(1), e.DroppedCount())
}

func TestRunClosesDeviceOnExit(t *testing.T) {
	w := &fakeWriter{}
	e := New(w, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { e.Run(ctx); close(done) }()
	cancel()
	<-done

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	assert.True(t, closed)
	assert.False(t, e.Ready())
}
