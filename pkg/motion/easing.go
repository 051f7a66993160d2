// Package motion drives the cloud's viewport transform and entrance animation.
package motion

import "math"

// Easing maps linear progress t ∈ [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return clamp01(t) }

// EaseOutCubic decelerates to a stop.
func EaseOutCubic(t float64) float64 {
	t = clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

// EaseOutElastic overshoots the target and settles with decaying oscillation.
func EaseOutElastic(t float64) float64 {
	t = clamp01(t)
	if t == 0 || t == 1 {
		return t
	}
	const c4 = 2 * math.Pi / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
