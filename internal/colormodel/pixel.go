// Package colormodel implements the RGBA pixel type, the fixed-length
// key-color frame buffer, and the blending/conversion/noise math that
// scripts and the compositor operate on.
package colormodel

// Pixel is a single addressable key's color. Alpha is a foreground
// opacity used only during blending; it is never sent to the device.
type Pixel struct {
	R, G, B, A uint8
}

// Frame is an ordered sequence of exactly K pixels. Index i refers to a
// fixed physical key; the index-to-layout mapping is owned by the
// device transport and is opaque here.
type Frame []Pixel

// NewFrame allocates a frame of length k with every pixel zeroed
// (transparent black).
func NewFrame(k int) Frame {
	return make(Frame, k)
}

// Clone returns an independent copy of f.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

// Fill sets every pixel in f to p.
func (f Frame) Fill(p Pixel) {
	for i := range f {
		f[i] = p
	}
}

// PackRGBA encodes a pixel as a packed 0xRRGGBBAA value, the wire format
// scripts exchange with host functions.
func PackRGBA(p Pixel) uint32 {
	return uint32(p.R)<<24 | uint32(p.G)<<16 | uint32(p.B)<<8 | uint32(p.A)
}

// UnpackRGBA decodes a packed 0xRRGGBBAA value back into a Pixel.
func UnpackRGBA(v uint32) Pixel {
	return Pixel{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}

// PackRGB encodes a pixel as 0xRRGGBB, dropping alpha (assumed opaque).
func PackRGB(p Pixel) uint32 {
	return uint32(p.R)<<16 | uint32(p.G)<<8 | uint32(p.B)
}

// UnpackRGB decodes a packed 0xRRGGBB value into an opaque Pixel.
func UnpackRGB(v uint32) Pixel {
	return Pixel{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
}
