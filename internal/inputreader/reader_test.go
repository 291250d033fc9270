package inputreader

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeEvent(t *testing.T, evType, code uint16, value int32) []byte {
	t.Helper()
	buf := make([]byte, kernelEventSize)
	binary.LittleEndian.PutUint16(buf[16:18], evType)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(value))
	return buf
}

func TestNextSkipsNonKeyEventsAndDecodesKeyEvents(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	reader := &Reader{fd: int(r.Fd())}

	go func() {
		w.Write(encodeEvent(t, 0x00, 0, 0))  // EV_SYN, must be skipped
		w.Write(encodeEvent(t, 0x01, 30, 1)) // EV_KEY KEY_A down
	}()

	got, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16(30), got.Code)
	assert.Equal(t, int32(1), got.Value)
	assert.True(t, got.Down())
}
