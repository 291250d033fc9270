package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cpw/eruption-roccat-vulcan/internal/uinput"
)

// TestNewRequiresPrivilegedHardware mirrors uinput's own hardware-gated
// test: New only succeeds where /dev/uinput is writable (the fixture
// rigs run in a privileged container), so elsewhere we just assert the
// failure is the documented virtual-keyboard error.
func TestNewRequiresPrivilegedHardware(t *testing.T) {
	d, err := New(Options{NumKeys: 4, ProfileDir: t.TempDir()})
	if err == nil {
		ctx, cancel := context.WithCancel(context.Background())
		go func() { time.Sleep(20 * time.Millisecond); cancel() }()
		done := make(chan error, 1)
		go func() { done <- d.Run(ctx) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("daemon did not shut down after cancel")
		}
		return
	}
	assert.True(t, errors.Is(err, uinput.ErrDeviceOpenFailed))
}

func TestNewRejectsZeroNumKeys(t *testing.T) {
	_, err := New(Options{NumKeys: 0, ProfileDir: t.TempDir()})
	assert.Error(t, err)
}
