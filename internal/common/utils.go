package common

import "math"

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampMin limits v to be no less than lo.
func ClampMin(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
