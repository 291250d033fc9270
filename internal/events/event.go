// Package events defines the daemon-wide event tagged union published on
// the event bus (C6) and consumed by observers, plugins, and the script
// host.
package events

import "time"

// Kind discriminates the Event tagged union.
type Kind int

const (
	KindDaemonStartup Kind = iota
	KindDaemonShutdown
	KindFilesystemEvent
	KindRawKeyboardEvent
	KindKeyDown
	KindKeyUp
)

func (k Kind) String() string {
	switch k {
	case KindDaemonStartup:
		return "DaemonStartup"
	case KindDaemonShutdown:
		return "DaemonShutdown"
	case KindFilesystemEvent:
		return "FilesystemEvent"
	case KindRawKeyboardEvent:
		return "RawKeyboardEvent"
	case KindKeyDown:
		return "KeyDown"
	case KindKeyUp:
		return "KeyUp"
	default:
		return "Unknown"
	}
}

// FSChangeKind discriminates the kind of filesystem change carried by a
// FilesystemEvent.
type FSChangeKind int

const (
	FSCreated FSChangeKind = iota
	FSModified
	FSRemoved
)

// RawKeyEvent is the raw evdev-shaped key event mirrored from the
// physical keyboard: Value is 1 on press, 0 on release, 2 on autorepeat.
type RawKeyEvent struct {
	Code  uint16
	Value int32
}

// Down reports whether the raw event represents a key-down transition
// (press or autorepeat).
func (r RawKeyEvent) Down() bool { return r.Value != 0 }

// Event is the tagged union of everything published on the bus. Only
// the fields relevant to Kind are meaningful; the rest are zero.
//
// Seq and At are a supplemental addition over the bare tagged union in
// the distilled spec, carried over from the original daemon's uniform
// event envelope: observers that need ordering or latency diagnostics
// can rely on them without every Kind needing its own timestamp field.
type Event struct {
	Kind Kind
	Seq  uint64
	At   time.Time

	Path   string
	FSKind FSChangeKind

	Raw     RawKeyEvent
	KeyCode uint8
}

// DaemonStartup builds the startup event.
func DaemonStartup() Event { return Event{Kind: KindDaemonStartup} }

// DaemonShutdown builds the shutdown event.
func DaemonShutdown() Event { return Event{Kind: KindDaemonShutdown} }

// NewFilesystemEvent builds a FilesystemEvent.
func NewFilesystemEvent(path string, kind FSChangeKind) Event {
	return Event{Kind: KindFilesystemEvent, Path: path, FSKind: kind}
}

// NewRawKeyboardEvent builds a RawKeyboardEvent.
func NewRawKeyboardEvent(raw RawKeyEvent) Event {
	return Event{Kind: KindRawKeyboardEvent, Raw: raw}
}

// NewKeyDown builds a KeyDown event for the translated key code.
func NewKeyDown(code uint8) Event {
	return Event{Kind: KindKeyDown, KeyCode: code}
}

// NewKeyUp builds a KeyUp event for the translated key code.
func NewKeyUp(code uint8) Event {
	return Event{Kind: KindKeyUp, KeyCode: code}
}
