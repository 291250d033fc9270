package colormodel

import "math"

func sincos(theta float64) (sin, cos float64) {
	return math.Sincos(theta)
}
