package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/layout"
	"github.com/recera/mindcloud/pkg/motion"
)

const (
	testW = 1000.0
	testH = 800.0
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	g      *graph.Graph
	eng    *motion.Engine
	c      *Controller
	opened []string
	focus  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	p := &graph.Payload{
		Nodes: []graph.PayloadNode{
			{ID: "p1", Slug: "hooks", Title: "React hooks in depth", CategoryName: "Software", TagNames: []string{"React"}},
			{ID: "p2", Slug: "suspense", Title: "Suspense patterns", CategoryName: "Software", TagNames: []string{"React"}},
			{ID: "w1", Slug: "essay", Title: "On essays", CategoryName: "Writing"},
		},
	}
	g, _, err := graph.Build(p, graph.DefaultTaxonomy())
	require.NoError(t, err)
	layout.Compute(g, testW, testH, layout.DefaultOptions())
	layout.Settle(g)

	h := &harness{g: g, eng: motion.NewEngine(geom.Identity)}
	h.c = NewController(h.eng, motion.NewEmphasis(60))
	h.c.SetClock(func() time.Time { return t0 })
	h.c.SetViewport(testW, testH)
	h.c.SetGraph(g)
	h.c.OnOpenDetail = func(n *graph.Node) { h.opened = append(h.opened, n.ID) }
	h.c.OnFocusChange = func(id string) { h.focus = append(h.focus, id) }
	return h
}

// screen returns where node id currently appears.
func (h *harness) screen(id string) geom.Point {
	return geom.LayoutToScreen(h.eng.Transform(), h.g.Node(id).Pos())
}

func (h *harness) settle() { h.eng.Tick(h.eng.Current(), t0.Add(2 * time.Second)) }

var empty = geom.Pt(5, 5)

func TestHitTest(t *testing.T) {
	h := newHarness(t)
	n := h.g.Node("p1")

	assert.Same(t, n, HitTest(h.g, geom.Identity, n.Pos(), HitPadding))
	edge := n.Pos().Add(geom.Pt(n.Size+HitPadding-0.01, 0))
	assert.Same(t, n, HitTest(h.g, geom.Identity, edge, HitPadding))
	assert.Nil(t, HitTest(h.g, geom.Identity, empty, HitPadding))
	assert.Nil(t, HitTest(nil, geom.Identity, empty, HitPadding))

	tr := geom.Transform{X: -120, Y: 40, K: 2}
	assert.Same(t, n, HitTest(h.g, tr, geom.LayoutToScreen(tr, n.Pos()), HitPadding))

	n.Placed = false
	assert.Nil(t, HitTest(h.g, geom.Identity, n.Pos(), 0))
}

func TestClick_TopicFocusesAndCenters(t *testing.T) {
	h := newHarness(t)
	h.c.Click(h.screen("software"))
	assert.Equal(t, "software", h.c.Focused())
	assert.Equal(t, motion.Focus, h.eng.Active())

	for i := 1; i <= 10; i++ {
		h.eng.Tick(h.eng.Current(), t0.Add(time.Duration(i) * motion.FocusDuration / 10))
		k := h.eng.Transform().K
		assert.GreaterOrEqual(t, k, geom.MinZoom)
		assert.LessOrEqual(t, k, geom.MaxZoom)
	}
	assert.Equal(t, geom.FocusZoom, h.eng.Transform().K)
	s := h.screen("software")
	assert.InDelta(t, testW/2, s.X, 1e-9)
	assert.InDelta(t, testH/2, s.Y, 1e-9)
	assert.Equal(t, []string{"software"}, h.focus)
}

func TestClick_LeafFocusesParentThenOpens(t *testing.T) {
	h := newHarness(t)

	h.c.Click(h.screen("p1"))
	assert.Equal(t, "software/react", h.c.Focused())
	assert.False(t, h.c.PanelOpen())
	assert.Empty(t, h.opened)

	h.settle()
	h.c.Click(h.screen("p1"))
	assert.True(t, h.c.PanelOpen())
	assert.Equal(t, []string{"p1"}, h.opened)
	assert.Equal(t, "software/react", h.c.Focused())

	// A sibling switches the panel without refocusing.
	h.c.Click(h.screen("p2"))
	assert.Equal(t, "p2", h.c.Detail().ID)
	assert.Equal(t, []string{"software/react"}, h.focus)
}

func TestClick_EmptySpace(t *testing.T) {
	h := newHarness(t)

	h.c.Click(empty)
	assert.Equal(t, motion.None, h.eng.Active())

	h.c.Focus("writing")
	h.settle()
	h.c.Click(h.screen("w1"))
	require.True(t, h.c.PanelOpen())

	// Panel open: empty space does nothing.
	h.c.Click(empty)
	assert.Equal(t, "writing", h.c.Focused())

	h.c.ClosePanel()
	h.c.Click(empty)
	assert.Equal(t, "", h.c.Focused())
	assert.Equal(t, motion.Overview, h.eng.Active())
}

func TestClick_CenterReturnsToOverview(t *testing.T) {
	h := newHarness(t)
	h.c.Focus("software/react")
	h.settle()
	h.c.Click(h.screen("p1"))
	require.True(t, h.c.PanelOpen())

	h.c.Click(h.screen("center"))
	assert.Equal(t, "", h.c.Focused())
	assert.False(t, h.c.PanelOpen())
	h.settle()
	assert.True(t, geom.NearlyEqual(h.c.OverviewTransform(), h.eng.Transform(), 1e-9))
}

func TestOverview_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.c.Focus("software")
	h.settle()

	h.c.Overview()
	h.settle()
	before := h.eng.Transform()

	h.c.Overview()
	assert.False(t, h.eng.Animating())
	assert.Equal(t, before, h.eng.Transform())
}

func TestKey_Escape(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.c.Key("Escape"))

	h.c.Focus("writing")
	h.settle()
	h.c.Click(h.screen("w1"))
	require.True(t, h.c.PanelOpen())

	assert.True(t, h.c.Key("Escape"))
	assert.False(t, h.c.PanelOpen())
	assert.Equal(t, "writing", h.c.Focused())

	assert.True(t, h.c.Key("Escape"))
	assert.Equal(t, "", h.c.Focused())
	assert.False(t, h.c.Key("Enter"))
}

func TestPointer_DragPansFromEmptySpace(t *testing.T) {
	h := newHarness(t)
	h.c.PointerDown(empty)
	h.c.PointerMove(empty.Add(geom.Pt(10, 0)))
	h.c.PointerMove(empty.Add(geom.Pt(30, -5)))
	h.c.PointerUp(empty.Add(geom.Pt(30, -5)))

	tr := h.eng.Transform()
	assert.InDelta(t, 30, tr.X, 1e-9)
	assert.InDelta(t, -5, tr.Y, 1e-9)
	assert.Equal(t, "", h.c.Focused())
}

func TestPointer_DragFromNodeDoesNotPan(t *testing.T) {
	h := newHarness(t)
	p := h.screen("software")
	h.c.PointerDown(p)
	h.c.PointerMove(p.Add(geom.Pt(40, 0)))
	h.c.PointerUp(p.Add(geom.Pt(40, 0)))

	assert.Equal(t, geom.Identity, h.eng.Transform())
	assert.Equal(t, "", h.c.Focused())
}

func TestPointer_SmallMoveIsClick(t *testing.T) {
	h := newHarness(t)
	p := h.screen("software")
	h.c.PointerDown(p)
	h.c.PointerMove(p.Add(geom.Pt(2, 0)))
	h.c.PointerUp(p.Add(geom.Pt(2, 0)))
	assert.Equal(t, "software", h.c.Focused())
}

func TestPointer_HoverAndLeave(t *testing.T) {
	h := newHarness(t)
	var redraws int
	h.c.Invalidate = func() { redraws++ }

	h.c.PointerMove(h.screen("writing"))
	assert.Equal(t, "writing", h.c.emph.Hovered())
	h.c.PointerMove(h.screen("center"))
	assert.Equal(t, "", h.c.emph.Hovered())
	h.c.PointerMove(h.screen("w1"))
	h.c.PointerLeave()
	assert.Equal(t, "", h.c.emph.Hovered())
	assert.Equal(t, 4, redraws)
}

func TestWheel_ZoomsAboutPointer(t *testing.T) {
	h := newHarness(t)
	anchor := geom.Pt(300, 200)
	before := geom.ScreenToLayout(h.eng.Transform(), anchor)

	h.c.Wheel(anchor, -120)
	assert.InDelta(t, 1.1, h.eng.Transform().K, 1e-9)
	after := geom.ScreenToLayout(h.eng.Transform(), anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	h.c.Wheel(anchor, 120)
	assert.InDelta(t, 0.99, h.eng.Transform().K, 1e-9)

	for range 50 {
		h.c.Wheel(anchor, 120)
	}
	assert.Equal(t, geom.MinZoom, h.eng.Transform().K)
}

func TestTouch_PinchAndTap(t *testing.T) {
	h := newHarness(t)
	a, b := geom.Pt(400, 400), geom.Pt(600, 400)
	h.c.TouchStart([]geom.Point{a, b})
	h.c.TouchMove([]geom.Point{geom.Pt(300, 400), geom.Pt(700, 400)})
	assert.InDelta(t, 2.0, h.eng.Transform().K, 1e-9)

	// Lifting one finger continues as a pan, never a tap.
	h.c.TouchEnd([]geom.Point{geom.Pt(700, 400)})
	h.c.TouchEnd(nil)
	assert.Equal(t, "", h.c.Focused())

	h.eng.Set(geom.Identity)
	p := h.screen("writing")
	h.c.TouchStart([]geom.Point{p})
	h.c.TouchEnd(nil)
	assert.Equal(t, "writing", h.c.Focused())
}

func TestTouch_SingleFingerPan(t *testing.T) {
	h := newHarness(t)
	h.c.TouchStart([]geom.Point{empty})
	h.c.TouchMove([]geom.Point{empty.Add(geom.Pt(0, 20))})
	h.c.TouchEnd(nil)
	assert.InDelta(t, 20, h.eng.Transform().Y, 1e-9)
	assert.Equal(t, "", h.c.Focused())
}

func TestFocus_IgnoresUnknownAndLeafFocusesParent(t *testing.T) {
	h := newHarness(t)
	h.c.Focus("nope")
	assert.Equal(t, "", h.c.Focused())

	h.c.Focus("w1")
	assert.Equal(t, "writing", h.c.Focused())

	h.c.Focus("center")
	assert.Equal(t, "", h.c.Focused())
}
