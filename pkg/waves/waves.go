// Package waves draws the animated noise-wave background behind the cloud.
package waves

import (
	"math"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/render"
)

// Options tune the wave field.
type Options struct {
	Lines     int
	Step      float64 // horizontal sample spacing, px
	Amplitude float64 // px
	XScale    float64 // noise units per px
	LineScale float64 // noise units between lines
	Speed     float64 // noise units per second
	Color     string
	Alpha     float64
	Seed      int64
}

func (o Options) withDefaults() Options {
	if o.Lines <= 0 {
		o.Lines = 8
	}
	if o.Step <= 0 {
		o.Step = 12
	}
	if o.Amplitude == 0 {
		o.Amplitude = 40
	}
	if o.XScale == 0 {
		o.XScale = 0.004
	}
	if o.LineScale == 0 {
		o.LineScale = 0.35
	}
	if o.Speed == 0 {
		o.Speed = 0.15
	}
	if o.Color == "" {
		o.Color = "#3a4a63"
	}
	if o.Alpha == 0 {
		o.Alpha = 0.18
	}
	if o.Seed == 0 {
		o.Seed = 7
	}
	return o
}

// Field samples a 3D Perlin field; the third axis is time.
type Field struct {
	opts  Options
	noise *perlin.Perlin
}

// New returns a field. Equal options give identical waves.
func New(opts Options) *Field {
	opts = opts.withDefaults()
	return &Field{opts: opts, noise: perlin.NewPerlin(2, 2, 3, opts.Seed)}
}

// Options returns the effective options.
func (f *Field) Options() Options { return f.opts }

// Lines returns the wave polylines for a w×h screen at elapsed time t.
// Lines are spread evenly down the screen. A size that is not finite and
// positive gives no lines.
func (f *Field) Lines(t time.Duration, w, h float64) [][]geom.Point {
	if !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return nil
	}
	o := f.opts
	z := t.Seconds() * o.Speed
	gap := h / float64(o.Lines+1)
	out := make([][]geom.Point, o.Lines)
	for i := range out {
		base := gap * float64(i+1)
		var pts []geom.Point
		for x := 0.0; ; x += o.Step {
			if x > w {
				x = w
			}
			y := base + f.noise.Noise3D(x*o.XScale, float64(i)*o.LineScale, z)*o.Amplitude
			pts = append(pts, geom.Pt(x, y))
			if x == w {
				break
			}
		}
		out[i] = pts
	}
	return out
}

// Draw strokes the waves onto c in screen space.
func (f *Field) Draw(c render.Canvas, t time.Duration) {
	w, h := c.Size()
	s := render.Stroke{Color: f.opts.Color, Alpha: f.opts.Alpha, Width: 1}
	for _, line := range f.Lines(t, w, h) {
		for j := 1; j < len(line); j++ {
			c.Line(line[j-1], line[j], s)
		}
	}
}

// Backdrop adapts the field to render.Frame.Backdrop.
func (f *Field) Backdrop(t time.Duration) func(render.Canvas) {
	return func(c render.Canvas) { f.Draw(c, t) }
}
