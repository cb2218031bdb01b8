package detection

import "math"

// Next maps seed to a pseudo-random value in [0, 1).
//
// The value is frac(sin(seed) * 10000). It is a pure function: the same seed
// always yields the same value. It has no statistical quality to speak of and
// exists so that region placement is reproducible for a given image.
func Next(seed float64) float64 {
	x := math.Sin(seed) * 10000
	f := x - math.Floor(x)
	if f >= 1 {
		// x a hair below zero rounds x+1 up to exactly 1.
		return 0
	}
	return f
}

// RandomInt maps seed to an integer in [min, max], both inclusive.
func RandomInt(min, max int, seed float64) int {
	return int(math.Floor(Next(seed)*float64(max-min+1))) + min
}
