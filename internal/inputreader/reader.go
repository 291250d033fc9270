// Package inputreader implements the raw keyboard event source (spec.md
// C2): it reads struct input_event records off a physical keyboard's
// evdev node and turns EV_KEY records into events.RawKeyEvent values
// for the macro engine and compositor to act on.
package inputreader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/cpw/eruption-roccat-vulcan/internal/events"
	"github.com/cpw/eruption-roccat-vulcan/internal/uinput"
)

// evKey is uinput.EV_KEY, the only event type Next returns.
const evKey = uinput.EV_KEY

// kernelEventSize is sizeof(struct input_event) on a 64-bit kernel:
// two 8-byte timeval fields plus type/code/value.
const kernelEventSize = 24

// Reader reads raw key events off one evdev device node.
type Reader struct {
	fd  int
	log *slog.Logger
}

// Open opens the evdev node at path in read-only, blocking mode.
func Open(path string, log *slog.Logger) (*Reader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("inputreader: open %s: %w", path, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reader{fd: fd, log: log}, nil
}

// Close releases the device node.
func (r *Reader) Close() error {
	return unix.Close(r.fd)
}

// Next blocks until the next EV_KEY record arrives and returns it,
// silently skipping every other event type (EV_SYN, EV_MSC, ...).
func (r *Reader) Next() (events.RawKeyEvent, error) {
	buf := make([]byte, kernelEventSize)
	for {
		n, err := unix.Read(r.fd, buf)
		if err != nil {
			return events.RawKeyEvent{}, err
		}
		if n < kernelEventSize {
			return events.RawKeyEvent{}, io.ErrUnexpectedEOF
		}
		evType := binary.LittleEndian.Uint16(buf[16:18])
		code := binary.LittleEndian.Uint16(buf[18:20])
		value := int32(binary.LittleEndian.Uint32(buf[20:24]))
		if evType != evKey {
			continue
		}
		return events.RawKeyEvent{Code: code, Value: value}, nil
	}
}

// Run reads events until Close is called (observed here as Next
// returning an error), invoking handle for every raw key event.
func (r *Reader) Run(handle func(events.RawKeyEvent)) {
	for {
		ev, err := r.Next()
		if err != nil {
			if !errors.Is(err, unix.EBADF) {
				r.log.Warn("input reader stopped", "error", err)
			}
			return
		}
		handle(ev)
	}
}
