package mindcloud

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/motion"
	"github.com/recera/mindcloud/pkg/render"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fetchFunc func(ctx context.Context) (*graph.Payload, error)

func (f fetchFunc) FetchGraph(ctx context.Context) (*graph.Payload, error) { return f(ctx) }

type trackerFunc func(id string) bool

func (f trackerFunc) TrackView(id string) bool { return f(id) }

func payload() *graph.Payload {
	return &graph.Payload{
		Nodes: []graph.PayloadNode{
			{ID: "p1", Slug: "hooks", Title: "React hooks in depth", CategoryName: "Software", TagNames: []string{"React"}},
			{ID: "p2", Slug: "suspense", Title: "Suspense patterns", CategoryName: "Software", TagNames: []string{"React"}},
			{ID: "p3", Slug: "vue-signals", Title: "Signals in Vue", CategoryName: "Software", TagNames: []string{"Vue"}},
			{ID: "x1", Slug: "palm", Title: "palm", IsProject: true, Project: &graph.Project{Title: "palm", Language: "Go"}},
			{ID: "w1", Slug: "essay", Title: "On essays", CategoryName: "Writing"},
		},
		Links: []graph.PayloadLink{{Source: "p1", Target: "ghost"}},
	}
}

func static() fetchFunc {
	return func(context.Context) (*graph.Payload, error) { return payload(), nil }
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func newCloud(t *testing.T, opts Options) (*Cloud, *clock) {
	t.Helper()
	clk := &clock{t: epoch}
	opts.Now = clk.Now
	if opts.Width == 0 {
		opts.Width, opts.Height = 1000, 800
	}
	if opts.Session == nil {
		opts.Session = PlayedSession()
	}
	opts.Seed = 42
	c := New(opts)
	require.NoError(t, c.Load(context.Background(), static()))
	return c, clk
}

// settle draws frames until nothing animates.
func settle(t *testing.T, c *Cloud, clk *clock) {
	t.Helper()
	rec := render.NewRecorder(c.Size())
	for range 100 {
		if !c.Frame(rec, clk.Advance(100*time.Millisecond)) {
			return
		}
	}
	t.Fatal("animation never finished")
}

func screenOf(c *Cloud, id string) geom.Point {
	return geom.LayoutToScreen(c.Transform(), c.Graph().Node(id).Pos())
}

func TestLoad_Failure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	boom := errors.New("connection refused")
	c := New(Options{Logger: zap.New(core)})

	err := c.Load(context.Background(), fetchFunc(func(context.Context) (*graph.Payload, error) { return nil, boom }))
	require.ErrorIs(t, err, boom)

	state, lerr := c.State()
	assert.Equal(t, Failed, state)
	assert.ErrorIs(t, lerr, boom)
	assert.Nil(t, c.Graph())
	assert.Equal(t, 1, logs.FilterMessage("loading graph failed").Len())

	rec := render.NewRecorder(c.Size())
	assert.False(t, c.Frame(rec, epoch))
	assert.Empty(t, rec.Filter("circle"))

	assert.ErrorIs(t, c.Focus("software"), ErrNotReady)
	c.Click(geom.Pt(10, 10))
}

func TestLoad_Ready(t *testing.T) {
	c, _ := newCloud(t, Options{})
	state, err := c.State()
	assert.Equal(t, Ready, state)
	assert.NoError(t, err)
	assert.Equal(t, 1, c.Report().DroppedLinks)
	assert.Equal(t, "ready", state.String())
}

func TestSession_IntroPlaysOnce(t *testing.T) {
	s := NewSession()
	first, _ := newCloud(t, Options{Session: s})
	assert.Equal(t, motion.Explosion, first.Animating())
	assert.True(t, s.IntroPlayed())

	second, _ := newCloud(t, Options{Session: s})
	assert.Equal(t, motion.None, second.Animating())
	for _, n := range second.Graph().Nodes {
		assert.Equal(t, n.Target(), n.Pos(), n.ID)
	}

	other, _ := newCloud(t, Options{Session: NewSession()})
	assert.Equal(t, motion.Explosion, other.Animating())
}

func TestFocus_EndsCentered(t *testing.T) {
	c, clk := newCloud(t, Options{})
	require.NoError(t, c.Focus("software"))
	settle(t, c, clk)

	s := screenOf(c, "software")
	assert.InDelta(t, 500, s.X, 1e-9)
	assert.InDelta(t, 400, s.Y, 1e-9)
	assert.Equal(t, geom.FocusZoom, c.Transform().K)

	assert.ErrorIs(t, c.Focus("nope"), ErrUnknownNode)
}

func TestResize_KeepsFocusedParentCenteredWithPanelOpen(t *testing.T) {
	c, clk := newCloud(t, Options{})
	require.NoError(t, c.Open("p1"))
	settle(t, c, clk)
	require.Equal(t, "software/react", c.Focused())
	require.NotNil(t, c.Detail())

	// The panel takes half the width.
	c.Resize(500, 800)
	s := screenOf(c, "software/react")
	assert.InDelta(t, 250, s.X, 1e-9)
	assert.InDelta(t, 400, s.Y, 1e-9)
	assert.Equal(t, geom.FocusZoom, c.Transform().K)
	assert.Equal(t, "p1", c.Detail().ID)
	assert.Equal(t, motion.None, c.Animating())
}

func TestResize_OverviewRecentersOnCenter(t *testing.T) {
	c, _ := newCloud(t, Options{})
	c.Pan(40, 40)
	c.Resize(600, 400)

	s := screenOf(c, "center")
	assert.InDelta(t, 300, s.X, 1e-9)
	assert.InDelta(t, 200, s.Y, 1e-9)
	assert.Equal(t, 1.0, c.Transform().K)
	for _, n := range c.Graph().Nodes {
		assert.Equal(t, n.Target(), n.Pos(), n.ID)
	}
}

func TestResize_IgnoresEmptyAndNonFinite(t *testing.T) {
	c, _ := newCloud(t, Options{})
	w, h := c.Size()
	for _, size := range [][2]float64{{0, 300}, {math.NaN(), 300}, {300, math.Inf(1)}} {
		c.Resize(size[0], size[1])
		gw, gh := c.Size()
		assert.Equal(t, w, gw, "%v", size)
		assert.Equal(t, h, gh, "%v", size)
	}
}

func TestResize_DuringExplosion(t *testing.T) {
	c, clk := newCloud(t, Options{Session: NewSession()})
	require.Equal(t, motion.Explosion, c.Animating())

	c.Resize(600, 400)
	assert.Equal(t, motion.Explosion, c.Animating())
	settle(t, c, clk)

	center := c.Graph().Center()
	assert.InDelta(t, 300, center.X, 1e-9)
	assert.InDelta(t, 200, center.Y, 1e-9)
	assert.Equal(t, geom.CenterOn(center.Target(), 600, 400, 1), c.Transform())
}

func TestOverview_Twice(t *testing.T) {
	c, clk := newCloud(t, Options{})
	require.NoError(t, c.Focus("writing"))
	settle(t, c, clk)

	c.Overview()
	settle(t, c, clk)
	before := c.Transform()

	c.Overview()
	assert.Equal(t, motion.None, c.Animating())
	assert.Equal(t, before, c.Transform())
}

func TestOpen_TracksProjectViews(t *testing.T) {
	var tracked []string
	c, clk := newCloud(t, Options{Tracker: trackerFunc(func(id string) bool {
		tracked = append(tracked, id)
		return true
	})})

	require.NoError(t, c.Open("w1"))
	require.NoError(t, c.Open("x1"))
	settle(t, c, clk)
	assert.Equal(t, []string{"x1"}, tracked)

	assert.ErrorIs(t, c.Open("software"), ErrUnknownNode)
}

func TestClick_Semantics(t *testing.T) {
	var opened []string
	c, clk := newCloud(t, Options{})
	c.opts.Hooks.OnOpenDetail = func(n *graph.Node) { opened = append(opened, n.ID) }

	c.Click(screenOf(c, "w1"))
	assert.Equal(t, "writing", c.Focused())
	assert.Empty(t, opened)
	settle(t, c, clk)

	c.Click(screenOf(c, "w1"))
	assert.Equal(t, []string{"w1"}, opened)

	assert.True(t, c.Key("Escape"))
	assert.Nil(t, c.Detail())
	assert.True(t, c.Key("Escape"))
	assert.Equal(t, "", c.Focused())
	assert.False(t, c.Key("Escape"))
}

func TestHooks_RunOutsideLock(t *testing.T) {
	var seen string
	var frames int
	c, _ := newCloud(t, Options{})
	c.opts.Hooks = Hooks{
		OnFocusChange: func(id string) { seen = c.Focused() },
		OnInvalidate:  func() { frames++ },
	}
	require.NoError(t, c.Focus("life"))
	assert.Equal(t, "life", seen)
	assert.Positive(t, frames)
}

func TestFrame_DrawsGraph(t *testing.T) {
	c, _ := newCloud(t, Options{})
	rec := render.NewRecorder(c.Size())
	assert.False(t, c.Frame(rec, epoch))
	assert.Len(t, rec.Filter("circle"), len(c.Graph().Nodes))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "failed", Failed.String())
}
