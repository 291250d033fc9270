package script

// Latch is the barrier a script host acks after finishing a message
// that the compositor is waiting on (a tick's RealizeColorMap handoff,
// or a key upcall). Defined locally so this package never needs to
// import the compositor package; compositor.Latch satisfies this
// structurally.
type Latch interface {
	Ack()
}

// ImmediatePresenter is the synchronous write path set_key_color and
// set_color_map use: unlike submit_color_map (composited at the next
// barrier), these calls take effect on the device immediately.
type ImmediatePresenter interface {
	PresentPixel(index int, packedRGB uint32) error
	PresentFrame(packedRGB []uint32) error
}
