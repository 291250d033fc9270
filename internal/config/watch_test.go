package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Notify(evt events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return nil
}

func (b *recordingBus) snapshot() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, len(b.events))
	copy(out, b.events)
	return out
}

func TestWatcherPublishesCreateEventForNewFile(t *testing.T) {
	dir := t.TempDir()
	bus := &recordingBus{}
	w, err := NewWatcher(dir, bus, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	path := filepath.Join(dir, "default.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(bus.snapshot()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := bus.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, events.KindFilesystemEvent, got[0].Kind)
	assert.Equal(t, events.FSCreated, got[0].FSKind)
}
