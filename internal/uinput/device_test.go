package uinput

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestOpenRequiresPrivilegedHardware documents the real-hardware
// contract of Open: it is only exercised against a live /dev/uinput
// node (the fixture rigs use a privileged container), so here we just
// assert the failure mode is ErrDeviceOpenFailed rather than a panic
// or an opaque error when the node is unavailable or unwritable.
func TestOpenRequiresPrivilegedHardware(t *testing.T) {
	d, err := Open()
	if err == nil {
		t.Cleanup(func() { _ = d.Close() })
		return
	}
	assert.True(t, errors.Is(err, ErrDeviceOpenFailed))
}

func TestCloseOnNeverOpenedDeviceIsNoop(t *testing.T) {
	d := &Device{}
	assert.NoError(t, d.Close())
}
