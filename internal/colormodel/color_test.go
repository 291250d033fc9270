package colormodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBARoundTrip(t *testing.T) {
	for _, p := range []Pixel{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{12, 200, 47, 128},
	} {
		packed := RGBAToColor(p.R, p.G, p.B, p.A)
		r, g, b, a := ColorToRGBA(packed)
		assert.Equal(t, p, Pixel{r, g, b, a})
	}
}

func TestRGBRoundTrip(t *testing.T) {
	r, g, b := ColorToRGB(RGBToColor(10, 20, 30))
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)
}

func TestHSLPrimaryColors(t *testing.T) {
	red := HSLToColor(0, 1, 0.5)
	r, g, b := ColorToRGB(red)
	assert.InDelta(t, 255, int(r), 2)
	assert.InDelta(t, 0, int(g), 2)
	assert.InDelta(t, 0, int(b), 2)
}
