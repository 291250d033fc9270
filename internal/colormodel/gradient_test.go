package colormodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLerpEndpoints(t *testing.T) {
	assert.Equal(t, 3.0, Lerp(3, 9, 0))
	assert.Equal(t, 9.0, Lerp(3, 9, 1))
	assert.Equal(t, 6.0, Lerp(3, 9, 0.5))
}

func TestLerpClampsOutOfRangeP(t *testing.T) {
	assert.Equal(t, 3.0, Lerp(3, 9, -1))
	assert.Equal(t, 9.0, Lerp(3, 9, 2))
}

func TestLinearGradientPixelEndpoints(t *testing.T) {
	start := Pixel{R: 10, G: 20, B: 30, A: 40}
	dest := Pixel{R: 200, G: 180, B: 160, A: 140}

	assert.Equal(t, start, LinearGradient(start, dest, 0))
	assert.Equal(t, dest, LinearGradient(start, dest, 1))
}
