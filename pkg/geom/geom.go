// Package geom holds the coordinate types shared by layout, motion, rendering
// and hit testing. Layout space is the canvas coordinate system before the
// pan/zoom transform is applied; screen space is after.
package geom

import "math"

// Zoom bounds for every transform mutation.
const (
	MinZoom   = 0.3
	MaxZoom   = 3.0
	FocusZoom = 2.0
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Polar returns the point at radius r and angle a (radians) around p.
func (p Point) Polar(r, a float64) Point {
	return Point{X: p.X + r*math.Cos(a), Y: p.Y + r*math.Sin(a)}
}

// Transform is the viewport pan offset (X, Y) and zoom scale K.
// A layout point p maps to screen point (p*K + offset).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the unpanned, unzoomed transform.
var Identity = Transform{K: 1}

// ScreenToLayout inverts t, mapping a screen coordinate into layout space.
// Every gesture handler goes through this one function.
func ScreenToLayout(t Transform, p Point) Point {
	k := t.K
	if k == 0 {
		k = 1
	}
	return Point{X: (p.X - t.X) / k, Y: (p.Y - t.Y) / k}
}

// LayoutToScreen applies t to a layout point.
func LayoutToScreen(t Transform, p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// CenterOn returns the transform that puts layout point p at the center of a
// w×h viewport at zoom k.
func CenterOn(p Point, w, h, k float64) Transform {
	k = ClampZoom(k)
	return Transform{X: w*0.5 - p.X*k, Y: h*0.5 - p.Y*k, K: k}
}

// ClampZoom limits k to [MinZoom, MaxZoom].
func ClampZoom(k float64) float64 {
	if k < MinZoom {
		return MinZoom
	}
	if k > MaxZoom {
		return MaxZoom
	}
	return k
}

// ZoomAt scales t by factor while keeping the layout point under screen
// point anchor fixed. The resulting zoom is clamped.
func ZoomAt(t Transform, anchor Point, factor float64) Transform {
	k := ClampZoom(t.K * factor)
	w := ScreenToLayout(t, anchor)
	return Transform{X: anchor.X - w.X*k, Y: anchor.Y - w.Y*k, K: k}
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// LerpTransform interpolates every component of a transform.
func LerpTransform(a, b Transform, t float64) Transform {
	return Transform{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t), K: Lerp(a.K, b.K, t)}
}

// NearlyEqual reports whether two transforms match within eps.
func NearlyEqual(a, b Transform, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.K-b.K) <= eps
}
