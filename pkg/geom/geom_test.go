package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenToLayout_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		p    Point
	}{
		{"identity", Identity, Pt(10, 20)},
		{"panned", Transform{X: 40, Y: -15, K: 1}, Pt(3, 4)},
		{"zoomed", Transform{X: 100, Y: 50, K: 2.5}, Pt(-7, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := LayoutToScreen(tt.tr, tt.p)
			back := ScreenToLayout(tt.tr, s)
			assert.InDelta(t, tt.p.X, back.X, 1e-9)
			assert.InDelta(t, tt.p.Y, back.Y, 1e-9)
		})
	}
}

func TestScreenToLayout_ZeroScale(t *testing.T) {
	got := ScreenToLayout(Transform{X: 5, Y: 5}, Pt(10, 10))
	assert.Equal(t, Pt(5, 5), got)
}

func TestCenterOn(t *testing.T) {
	tr := CenterOn(Pt(100, 50), 800, 600, 2)
	s := LayoutToScreen(tr, Pt(100, 50))
	assert.InDelta(t, 400, s.X, 1e-9)
	assert.InDelta(t, 300, s.Y, 1e-9)
	assert.Equal(t, 2.0, tr.K)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoom, ClampZoom(0.01))
	assert.Equal(t, MaxZoom, ClampZoom(10))
	assert.Equal(t, 1.5, ClampZoom(1.5))
}

func TestZoomAt_KeepsAnchor(t *testing.T) {
	tr := Transform{X: 30, Y: 40, K: 1}
	anchor := Pt(200, 150)
	before := ScreenToLayout(tr, anchor)

	zoomed := ZoomAt(tr, anchor, 1.1)
	after := ScreenToLayout(zoomed, anchor)

	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 1.1, zoomed.K, 1e-9)
}

func TestZoomAt_Clamped(t *testing.T) {
	tr := Transform{K: 2.9}
	assert.Equal(t, MaxZoom, ZoomAt(tr, Pt(0, 0), 1.1).K)
	tr = Transform{K: 0.31}
	assert.Equal(t, MinZoom, ZoomAt(tr, Pt(0, 0), 0.9).K)
}
