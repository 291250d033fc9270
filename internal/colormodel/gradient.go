package colormodel

// Lerp returns the linear interpolation between a and b at p, clamped
// to [0,1]. linear_gradient(x, y, 0) == x and linear_gradient(x, y, 1) == y.
func Lerp(a, b, p float64) float64 {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return a + (b-a)*p
}

// LerpPixel interpolates every channel of two pixels independently,
// rounding half-away-from-zero and saturating to 8 bits.
func LerpPixel(start, dest Pixel, p float64) Pixel {
	return Pixel{
		R: clip8(Lerp(float64(start.R), float64(dest.R), p)),
		G: clip8(Lerp(float64(start.G), float64(dest.G), p)),
		B: clip8(Lerp(float64(start.B), float64(dest.B), p)),
		A: clip8(Lerp(float64(start.A), float64(dest.A), p)),
	}
}

// LinearGradient is the script-facing name for LerpPixel.
func LinearGradient(start, dest Pixel, p float64) Pixel {
	return LerpPixel(start, dest, p)
}
