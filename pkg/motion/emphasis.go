package motion

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// HoverScale is the radius multiplier a hovered node settles at.
const HoverScale = 1.15

// Emphasis springs the hovered node's radius up to HoverScale. Only one node
// is emphasised at a time; moving the hover to another node restarts the
// spring from 1.
type Emphasis struct {
	spring harmonica.Spring
	id     string
	scale  float64
	vel    float64
}

// NewEmphasis returns an emphasis spring stepped at fps frames per second.
func NewEmphasis(fps int) *Emphasis {
	if fps <= 0 {
		fps = 60
	}
	return &Emphasis{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.6),
		scale:  1,
	}
}

// Hover sets the emphasised node; "" clears it.
func (e *Emphasis) Hover(id string) {
	if id == e.id {
		return
	}
	e.id = id
	e.scale, e.vel = 1, 0
}

// Hovered returns the emphasised node id.
func (e *Emphasis) Hovered() string { return e.id }

// Update advances the spring one frame and reports whether it is still moving.
func (e *Emphasis) Update() bool {
	if e.id == "" {
		return false
	}
	if e.Settled() {
		e.scale, e.vel = HoverScale, 0
		return false
	}
	e.scale, e.vel = e.spring.Update(e.scale, e.vel, HoverScale)
	return !e.Settled()
}

// Settled reports whether the spring has come to rest.
func (e *Emphasis) Settled() bool {
	if e.id == "" {
		return true
	}
	return math.Abs(e.scale-HoverScale) < 1e-3 && math.Abs(e.vel) < 1e-3
}

// Scale returns the radius multiplier for node id.
func (e *Emphasis) Scale(id string) float64 {
	if id == "" || id != e.id {
		return 1
	}
	return e.scale
}
