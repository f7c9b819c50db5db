// Package math32 provides float32 math helpers.
// This is an internal package - external users should use the geom package.
package math32

import "math"

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Floor returns the greatest integer value less than or equal to x.
func Floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// IsNaN reports whether x is a "not-a-number" value.
func IsNaN(x float32) bool {
	return x != x
}

// Inf returns positive infinity.
func Inf() float32 {
	return float32(math.Inf(1))
}
