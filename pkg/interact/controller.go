package interact

import (
	"time"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/motion"
)

// Gesture tuning.
const (
	// ClickThreshold is how far, in screen pixels, a press may travel and
	// still count as a click.
	ClickThreshold = 3.0
	WheelZoomIn    = 1.1
	WheelZoomOut   = 0.9
)

type pointerState struct {
	down    bool
	moved   bool
	panning bool
	start   geom.Point
	last    geom.Point
}

type touchState struct {
	pointerState
	pinching bool
	// tap is false once a gesture can no longer end as a tap.
	tap      bool
	lastDist float64
}

// Controller holds focus and panel state and applies input to an engine.
// It is not safe for concurrent use.
type Controller struct {
	g    *graph.Graph
	eng  *motion.Engine
	emph *motion.Emphasis
	w, h float64
	now  func() time.Time

	focusID string
	detail  *graph.Node

	ptr   pointerState
	touch touchState

	// OnOpenDetail fires when a leaf's detail panel opens.
	OnOpenDetail func(n *graph.Node)
	// OnClosePanel fires when an open detail panel closes.
	OnClosePanel func()
	// OnFocusChange fires with the new focused parent; "" means overview.
	OnFocusChange func(id string)
	// Invalidate is called whenever the visible frame may have changed.
	Invalidate func()
}

// NewController returns a controller driving eng. emph may be nil.
func NewController(eng *motion.Engine, emph *motion.Emphasis) *Controller {
	return &Controller{eng: eng, emph: emph, now: time.Now}
}

// SetGraph replaces the graph and resets focus, panel and gesture state.
func (c *Controller) SetGraph(g *graph.Graph) {
	c.g = g
	c.focusID = ""
	c.detail = nil
	c.ptr = pointerState{}
	c.touch = touchState{}
	if c.emph != nil {
		c.emph.Hover("")
	}
}

// SetViewport records the canvas size used for centering.
func (c *Controller) SetViewport(w, h float64) { c.w, c.h = w, h }

// SetClock overrides the time source used to start animations.
func (c *Controller) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Focused returns the focused parent id, or "" in overview.
func (c *Controller) Focused() string { return c.focusID }

// PanelOpen reports whether a detail panel is open.
func (c *Controller) PanelOpen() bool { return c.detail != nil }

// Detail returns the node whose panel is open.
func (c *Controller) Detail() *graph.Node { return c.detail }

func (c *Controller) invalidate() {
	if c.Invalidate != nil {
		c.Invalidate()
	}
}

// OverviewTransform is the transform that centers the cloud at zoom 1.
func (c *Controller) OverviewTransform() geom.Transform {
	p := geom.Pt(c.w/2, c.h/2)
	if c.g != nil {
		if center := c.g.Center(); center != nil && center.Placed {
			p = center.Target()
		}
	}
	return geom.CenterOn(p, c.w, c.h, 1)
}

// FocusTransform is the transform that centers n at FocusZoom.
func (c *Controller) FocusTransform(n *graph.Node) geom.Transform {
	return geom.CenterOn(n.Target(), c.w, c.h, geom.FocusZoom)
}

// Focus makes id the focused parent and animates to it. The center returns
// to overview and a leaf focuses its parent. Unknown or unplaced nodes are
// ignored. Changing focus closes an open panel.
func (c *Controller) Focus(id string) {
	if c.g == nil {
		return
	}
	n := c.g.Node(id)
	if n == nil {
		return
	}
	switch {
	case n.Kind == graph.KindCenter:
		c.Overview()
		return
	case n.IsLeaf():
		if n = c.g.Parent(n); n == nil {
			return
		}
	}
	if !n.Placed {
		return
	}
	if n.ID != c.focusID {
		c.closePanel()
		c.focusID = n.ID
		if c.OnFocusChange != nil {
			c.OnFocusChange(n.ID)
		}
	}
	c.eng.FocusOn(c.FocusTransform(n), c.now())
	c.invalidate()
}

// Overview clears focus, closes any panel and animates back to the overview
// transform. Calling it again once there changes nothing.
func (c *Controller) Overview() {
	c.closePanel()
	if c.focusID != "" {
		c.focusID = ""
		if c.OnFocusChange != nil {
			c.OnFocusChange("")
		}
	}
	if c.eng.ReturnToOverview(c.OverviewTransform(), c.now()) != 0 {
		c.invalidate()
	}
}

// ClosePanel closes the detail panel, keeping focus.
func (c *Controller) ClosePanel() {
	if c.closePanel() {
		c.invalidate()
	}
}

func (c *Controller) closePanel() bool {
	if c.detail == nil {
		return false
	}
	c.detail = nil
	if c.OnClosePanel != nil {
		c.OnClosePanel()
	}
	return true
}

// OpenDetail opens n's detail panel without changing focus.
func (c *Controller) OpenDetail(n *graph.Node) {
	c.detail = n
	if c.OnOpenDetail != nil {
		c.OnOpenDetail(n)
	}
	c.invalidate()
}

// Click applies the click/tap rules at a screen point:
//
//   - empty space while focused with no panel open returns to overview
//   - the center returns to overview
//   - a topic becomes the focused parent
//   - a leaf under the focused parent opens its detail panel
//   - any other leaf focuses its parent first
func (c *Controller) Click(screen geom.Point) {
	if c.g == nil {
		return
	}
	n := HitTest(c.g, c.eng.Transform(), screen, HitPadding)
	switch {
	case n == nil:
		if c.focusID != "" && c.detail == nil {
			c.Overview()
		}
	case n.Kind == graph.KindCenter:
		c.Overview()
	case n.Kind == graph.KindTopic:
		c.Focus(n.ID)
	case n.ParentID == c.focusID:
		c.OpenDetail(n)
	default:
		c.Focus(n.ParentID)
	}
}

// PointerDown starts a press. Presses on empty space may become a pan.
func (c *Controller) PointerDown(p geom.Point) {
	c.ptr = pointerState{down: true, start: p, last: p}
	c.ptr.panning = c.g != nil && HitTest(c.g, c.eng.Transform(), p, HitPadding) == nil
}

// PointerMove pans while a press from empty space is held and updates hover
// otherwise.
func (c *Controller) PointerMove(p geom.Point) {
	if !c.ptr.down {
		c.hover(p)
		return
	}
	c.drag(&c.ptr, p)
}

func (c *Controller) drag(s *pointerState, p geom.Point) {
	if !s.moved && p.Dist(s.start) > ClickThreshold {
		s.moved = true
	}
	if s.moved && s.panning {
		d := p.Sub(s.last)
		c.eng.Pan(d.X, d.Y)
		c.invalidate()
	}
	s.last = p
}

// PointerUp ends a press; a press that did not travel is a click.
func (c *Controller) PointerUp(p geom.Point) {
	s := c.ptr
	c.ptr = pointerState{}
	if s.down && !s.moved {
		c.Click(p)
	}
}

// PointerLeave drops any press and hover.
func (c *Controller) PointerLeave() {
	c.ptr = pointerState{}
	if c.emph != nil && c.emph.Hovered() != "" {
		c.emph.Hover("")
		c.invalidate()
	}
}

func (c *Controller) hover(p geom.Point) {
	if c.emph == nil || c.g == nil {
		return
	}
	id := ""
	if n := HitTest(c.g, c.eng.Transform(), p, HitPadding); n != nil && n.Kind != graph.KindCenter {
		id = n.ID
	}
	if id != c.emph.Hovered() {
		c.emph.Hover(id)
		c.invalidate()
	}
}

// Wheel zooms about p: out for positive deltaY, in otherwise.
func (c *Controller) Wheel(p geom.Point, deltaY float64) {
	factor := WheelZoomIn
	if deltaY > 0 {
		factor = WheelZoomOut
	}
	c.eng.ZoomAt(p, factor)
	c.invalidate()
}

// TouchStart begins a touch gesture with the current touch points.
func (c *Controller) TouchStart(points []geom.Point) {
	switch len(points) {
	case 0:
		return
	case 1:
		p := points[0]
		c.touch = touchState{tap: true}
		c.touch.pointerState = pointerState{down: true, start: p, last: p}
		c.touch.panning = c.g != nil && HitTest(c.g, c.eng.Transform(), p, HitPadding) == nil
	default:
		c.touch = touchState{pinching: true, lastDist: points[0].Dist(points[1])}
	}
}

// TouchMove pinches with two fingers and pans with one.
func (c *Controller) TouchMove(points []geom.Point) {
	switch {
	case len(points) >= 2:
		d := points[0].Dist(points[1])
		if !c.touch.pinching {
			c.touch = touchState{pinching: true, lastDist: d}
			return
		}
		if c.touch.lastDist > 0 && d > 0 {
			mid := geom.Pt((points[0].X+points[1].X)/2, (points[0].Y+points[1].Y)/2)
			c.eng.ZoomAt(mid, d/c.touch.lastDist)
			c.invalidate()
		}
		c.touch.lastDist = d
	case len(points) == 1 && c.touch.down:
		c.drag(&c.touch.pointerState, points[0])
		if c.touch.moved {
			c.touch.tap = false
		}
	}
}

// TouchEnd is called with the touches still active. A single finger that
// lifts without travelling is a tap. When a pinch drops to one finger the
// remaining finger continues as a pan, never a tap.
func (c *Controller) TouchEnd(remaining []geom.Point) {
	s := c.touch
	switch len(remaining) {
	case 0:
		c.touch = touchState{}
		if s.tap && s.down && !s.moved {
			c.Click(s.start)
		}
	case 1:
		p := remaining[0]
		c.touch = touchState{}
		c.touch.pointerState = pointerState{down: true, moved: true, start: p, last: p}
		c.touch.panning = c.g != nil && HitTest(c.g, c.eng.Transform(), p, HitPadding) == nil
	}
}

// Key handles a key press by DOM key name and reports whether it was used.
// Escape closes an open panel, otherwise leaves focus.
func (c *Controller) Key(key string) bool {
	if key != "Escape" && key != "Esc" {
		return false
	}
	switch {
	case c.detail != nil:
		c.ClosePanel()
	case c.focusID != "":
		c.Overview()
	default:
		return false
	}
	return true
}
