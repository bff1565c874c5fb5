// Package utils contains small math helpers shared across the module.
package utils

import "math"

func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleNorm normalizes an angle in radians to the half-open interval (-pi, pi].
func AngleNorm(ang float64) float64 {
	for ang > math.Pi {
		ang -= 2 * math.Pi
	}
	for ang <= -math.Pi {
		ang += 2 * math.Pi
	}
	return ang
}

// Float64AlmostEqual determines if two float64s are equal within the given epsilon.
func Float64AlmostEqual(v1, v2, epsilon float64) bool {
	return math.Abs(v1-v2) <= epsilon
}

// Math.pow( x, 2 ) is slow, this is faster
func Square(n float64) float64 {
	return n * n
}
