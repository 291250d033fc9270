package colormodel

import "github.com/lucasb-eyer/go-colorful"

// RGBToColor packs three 8-bit channels into a 0xRRGGBB value.
func RGBToColor(r, g, b uint8) uint32 {
	return PackRGB(Pixel{R: r, G: g, B: b, A: 0xff})
}

// RGBAToColor packs four 8-bit channels into a 0xRRGGBBAA value.
func RGBAToColor(r, g, b, a uint8) uint32 {
	return PackRGBA(Pixel{R: r, G: g, B: b, A: a})
}

// ColorToRGB unpacks a 0xRRGGBB value into its channels.
func ColorToRGB(v uint32) (r, g, b uint8) {
	p := UnpackRGB(v)
	return p.R, p.G, p.B
}

// ColorToRGBA unpacks a 0xRRGGBBAA value into its channels.
func ColorToRGBA(v uint32) (r, g, b, a uint8) {
	p := UnpackRGBA(v)
	return p.R, p.G, p.B, p.A
}

// HSLToColor converts hue [0,360), saturation and lightness [0,1] into
// a packed opaque 0xRRGGBB value, routed through go-colorful's HSL
// conversion.
func HSLToColor(h, s, l float64) uint32 {
	c := colorful.Hsl(h, s, l)
	r, g, b := c.RGB255()
	return RGBToColor(r, g, b)
}

// HSLAToColor is HSLToColor with an explicit alpha channel folded in.
func HSLAToColor(h, s, l float64, a uint8) uint32 {
	c := colorful.Hsl(h, s, l)
	r, g, b := c.RGB255()
	return RGBAToColor(r, g, b, a)
}

// ColorToHSL is the inverse of HSLToColor: unpacks a 0xRRGGBB value and
// returns hue [0,360), saturation and lightness [0,1].
func ColorToHSL(v uint32) (h, s, l float64) {
	r, g, b := ColorToRGB(v)
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return c.Hsl()
}
