//go:build js && wasm

package cloudview

import (
	"fmt"
	"math"
	"syscall/js"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/render"
)

// jsCanvas draws on a CanvasRenderingContext2D. Coordinates are CSS pixels;
// the backing store is scaled by devicePixelRatio.
type jsCanvas struct {
	el  js.Value
	ctx js.Value
	w   float64
	h   float64
	dpr float64
	k   float64
}

func newJSCanvas(el js.Value) *jsCanvas {
	return &jsCanvas{el: el, ctx: el.Call("getContext", "2d"), dpr: 1, k: 1}
}

// fit sizes the backing store to the element's CSS box and returns that box.
func (c *jsCanvas) fit() (float64, float64) {
	rect := c.el.Call("getBoundingClientRect")
	c.w, c.h = rect.Get("width").Float(), rect.Get("height").Float()
	c.dpr = 1
	if v := js.Global().Get("window").Get("devicePixelRatio"); v.Truthy() {
		c.dpr = v.Float()
	}
	c.el.Set("width", int(c.w*c.dpr))
	c.el.Set("height", int(c.h*c.dpr))
	return c.w, c.h
}

func (c *jsCanvas) Size() (float64, float64) { return c.w, c.h }

func (c *jsCanvas) Clear(bg string) {
	c.ctx.Call("setTransform", c.dpr, 0, 0, c.dpr, 0, 0)
	c.ctx.Set("globalAlpha", 1)
	if bg == "" {
		c.ctx.Call("clearRect", 0, 0, c.w, c.h)
		return
	}
	c.ctx.Set("fillStyle", bg)
	c.ctx.Call("fillRect", 0, 0, c.w, c.h)
}

func (c *jsCanvas) SetTransform(t geom.Transform) {
	d := c.dpr
	c.k = t.K
	c.ctx.Call("setTransform", d*t.K, 0, 0, d*t.K, d*t.X, d*t.Y)
}

func (c *jsCanvas) Line(a, b geom.Point, s render.Stroke) {
	c.ctx.Set("globalAlpha", s.Alpha)
	c.ctx.Set("strokeStyle", s.Color)
	c.ctx.Set("lineWidth", s.Width)
	c.ctx.Call("beginPath")
	c.ctx.Call("moveTo", a.X, a.Y)
	c.ctx.Call("lineTo", b.X, b.Y)
	c.ctx.Call("stroke")
}

func (c *jsCanvas) Circle(p geom.Point, r float64, f render.Fill) {
	c.ctx.Set("globalAlpha", f.Alpha)
	c.ctx.Set("fillStyle", f.Color)
	c.ctx.Call("beginPath")
	c.ctx.Call("arc", p.X, p.Y, r, 0, 2*math.Pi)
	c.ctx.Call("fill")
}

func (c *jsCanvas) Glow(p geom.Point, r float64, f render.Fill) {
	c.ctx.Set("filter", fmt.Sprintf("blur(%gpx)", r*c.k*c.dpr/4))
	c.Circle(p, r, f)
	c.ctx.Set("filter", "none")
}

func (c *jsCanvas) font(font render.Font) {
	weight := "normal"
	if font.Bold {
		weight = "600"
	}
	c.ctx.Set("font", fmt.Sprintf("%s %gpx %s", weight, font.Size, font.Family))
}

func (c *jsCanvas) Text(p geom.Point, s string, font render.Font, f render.Fill) {
	c.font(font)
	c.ctx.Set("globalAlpha", f.Alpha)
	c.ctx.Set("fillStyle", f.Color)
	c.ctx.Set("textAlign", "center")
	c.ctx.Set("textBaseline", "alphabetic")
	c.ctx.Call("fillText", s, p.X, p.Y)
}

// MeasureText is independent of the transform: font sizes are layout units.
func (c *jsCanvas) MeasureText(s string, font render.Font) float64 {
	c.font(font)
	return c.ctx.Call("measureText", s).Get("width").Float()
}
