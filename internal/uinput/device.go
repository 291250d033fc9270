// Package uinput owns a single /dev/uinput-backed virtual keyboard. The
// returned Device is exclusively owned by the macro engine's goroutine;
// it carries no internal synchronization and must not be shared across
// goroutines.
package uinput

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrDeviceOpenFailed wraps any failure to create the kernel-backed
// virtual device.
var ErrDeviceOpenFailed = errors.New("uinput: device open failed")

// Identifiers for the synthetic device, matching the vendor/product
// pair the virtual keyboard has always advertised.
const (
	busUSB      = 0x03
	vendorID    = 0x0059
	productID   = 0x0123
	versionID   = 0x01
	deviceName  = "Eruption Virtual Keyboard"
	uinputPath  = "/dev/uinput"
	maxNameSize = 80
)

// Event types and sync codes, mirrored from linux/input-event-codes.h.
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_MSC = 0x04

	SYN_REPORT = 0
	MSC_SCAN   = 0x04
)

// uinput ioctl request numbers (see linux/uinput.h).
const (
	uiSetEvbit  = 0x40045564
	uiSetKeybit = 0x40045565
	uiSetMscbit = 0x40045568
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502
	uiDevSetup   = 0x405c5503
)

type uinputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID        uinputID
	Name      [maxNameSize]byte
	FFEffects uint32
}

// kernelInputEvent matches struct input_event.
type kernelInputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// InputEvent is the event shape the macro engine writes through Device.
type InputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Device is an open, configured /dev/uinput virtual keyboard.
type Device struct {
	fd    int
	ready bool
}

// Open creates and configures the virtual keyboard, enabling EV_KEY,
// EV_MSC, and EV_SYN plus the full key-code table in keycodes.go.
func Open() (*Device, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDeviceOpenFailed, uinputPath, err)
	}

	d := &Device{fd: fd}
	if err := d.ioctl(uiSetEvbit, uintptr(EV_KEY)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: UI_SET_EVBIT(EV_KEY): %v", ErrDeviceOpenFailed, err)
	}
	if err := d.ioctl(uiSetEvbit, uintptr(EV_MSC)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: UI_SET_EVBIT(EV_MSC): %v", ErrDeviceOpenFailed, err)
	}
	if err := d.ioctl(uiSetEvbit, uintptr(EV_SYN)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: UI_SET_EVBIT(EV_SYN): %v", ErrDeviceOpenFailed, err)
	}
	if err := d.ioctl(uiSetMscbit, uintptr(MSC_SCAN)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: UI_SET_MSCBIT: %v", ErrDeviceOpenFailed, err)
	}
	for _, code := range AllKeyCodes {
		if err := d.ioctl(uiSetKeybit, uintptr(code)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("%w: UI_SET_KEYBIT(%d): %v", ErrDeviceOpenFailed, code, err)
		}
	}

	var setup uinputSetup
	setup.ID = uinputID{Bustype: busUSB, Vendor: vendorID, Product: productID, Version: versionID}
	copy(setup.Name[:], deviceName)
	if err := d.ioctlPtr(uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: UI_DEV_SETUP: %v", ErrDeviceOpenFailed, err)
	}
	if err := d.ioctl(uiDevCreate, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: UI_DEV_CREATE: %v", ErrDeviceOpenFailed, err)
	}

	// give udev a moment to create the /dev/input node before anyone
	// tries to enumerate it.
	time.Sleep(50 * time.Millisecond)

	d.ready = true
	return d, nil
}

func (d *Device) ioctl(req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *Device) ioctlPtr(req uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}

// Write enqueues one event and, for EV_KEY, a trailing SYN_REPORT that
// shares its timestamp.
func (d *Device) Write(ev InputEvent) error {
	if !d.ready {
		return fmt.Errorf("uinput: device not ready")
	}
	now := time.Now()
	if err := d.writeRaw(ev.Type, ev.Code, ev.Value, now); err != nil {
		return err
	}
	if ev.Type == EV_KEY {
		return d.writeRaw(EV_SYN, SYN_REPORT, 0, now)
	}
	return nil
}

func (d *Device) writeRaw(evType, code uint16, value int32, at time.Time) error {
	ev := kernelInputEvent{
		Sec:   at.Unix(),
		Usec:  int64(at.Nanosecond() / 1000),
		Type:  evType,
		Code:  code,
		Value: value,
	}
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]
	_, err := unix.Write(d.fd, buf)
	return err
}

// Close destroys the kernel device node and releases the fd. Safe to
// call more than once.
func (d *Device) Close() error {
	if !d.ready {
		return nil
	}
	d.ioctl(uiDevDestroy, 0)
	err := unix.Close(d.fd)
	d.ready = false
	return err
}
