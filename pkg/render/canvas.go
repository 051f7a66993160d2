// Package render draws a cloud frame onto a Canvas. Canvases exist for the
// browser (js/wasm), SVG snapshots, terminals and tests.
package render

import "github.com/recera/mindcloud/pkg/geom"

// Stroke styles a line.
type Stroke struct {
	Color string
	Alpha float64
	Width float64
}

// Fill styles a filled shape or text.
type Fill struct {
	Color string
	Alpha float64
}

// Font describes label text.
type Font struct {
	Size   float64
	Family string
	Bold   bool
}

// Canvas is the drawing surface a frame is rendered to. Coordinates passed to
// Line, Circle, Glow and Text are in layout space; the canvas applies the
// transform installed by SetTransform. Text is horizontally centered on
// p.X with its baseline at p.Y.
type Canvas interface {
	Size() (w, h float64)
	Clear(background string)
	SetTransform(t geom.Transform)
	Line(a, b geom.Point, s Stroke)
	Circle(c geom.Point, r float64, f Fill)
	Glow(c geom.Point, r float64, f Fill)
	Text(p geom.Point, s string, font Font, f Fill)
	MeasureText(s string, font Font) float64
}
