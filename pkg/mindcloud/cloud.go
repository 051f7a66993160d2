// Package mindcloud ties the cloud together: one Cloud is one viewport with
// its own graph, layout, animation engine and input controller.
package mindcloud

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/interact"
	"github.com/recera/mindcloud/pkg/layout"
	"github.com/recera/mindcloud/pkg/motion"
	"github.com/recera/mindcloud/pkg/render"
	"github.com/recera/mindcloud/pkg/waves"
)

var (
	// ErrNotReady is returned by operations that need a loaded graph.
	ErrNotReady = errors.New("mindcloud: graph not loaded")
	// ErrUnknownNode is returned when an id names no node.
	ErrUnknownNode = errors.New("mindcloud: unknown node")
)

// State is the load state of a Cloud.
type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Fetcher supplies the graph payload.
type Fetcher interface {
	FetchGraph(ctx context.Context) (*graph.Payload, error)
}

// ViewTracker records project views. It must not block.
type ViewTracker interface {
	TrackView(projectID string) bool
}

// Hooks are called outside the cloud's lock, so they may call back into it.
type Hooks struct {
	OnOpenDetail  func(n *graph.Node)
	OnClosePanel  func()
	OnFocusChange func(id string)
	// OnInvalidate asks the host for a frame.
	OnInvalidate func()
}

// Options configure a Cloud.
type Options struct {
	Width, Height float64
	Taxonomy      *graph.Taxonomy
	Layout        layout.Options
	Theme         render.Theme
	// Session carries the intro state; nil starts a fresh session.
	Session *Session
	Tracker ViewTracker
	Hooks   Hooks
	Logger  *zap.Logger
	// Waves draws an animated background when set.
	Waves *waves.Field
	// Seed fixes the start jitter; 0 picks a random seed.
	Seed uint64
	FPS  int
	Now  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Taxonomy == nil {
		o.Taxonomy = graph.DefaultTaxonomy()
	}
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if o.Theme == (render.Theme{}) {
		o.Theme = render.DefaultTheme()
	}
	if o.Session == nil {
		o.Session = NewSession()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Cloud is one mind cloud viewport. All methods are safe for concurrent
// use; input and frames are serialised by one lock.
type Cloud struct {
	mu   sync.Mutex
	opts Options
	log  *zap.Logger

	state  State
	err    error
	g      *graph.Graph
	report graph.BuildReport

	eng  *motion.Engine
	emph *motion.Emphasis
	ctl  *interact.Controller

	w, h    float64
	born    time.Time
	pending []func()
}

// New returns a Cloud in the Loading state.
func New(opts Options) *Cloud {
	opts = opts.withDefaults()
	c := &Cloud{
		opts: opts,
		log:  opts.Logger.Named("cloud"),
		eng:  motion.NewEngine(geom.Identity),
		emph: motion.NewEmphasis(opts.FPS),
		w:    opts.Width,
		h:    opts.Height,
		born: opts.Now(),
	}
	c.ctl = interact.NewController(c.eng, c.emph)
	c.ctl.SetClock(opts.Now)
	c.ctl.SetViewport(c.w, c.h)
	c.ctl.OnOpenDetail = c.openDetail
	c.ctl.OnClosePanel = func() { c.queue(c.opts.Hooks.OnClosePanel) }
	c.ctl.OnFocusChange = func(id string) {
		if fn := c.opts.Hooks.OnFocusChange; fn != nil {
			c.queue(func() { fn(id) })
		}
	}
	return c
}

func (c *Cloud) openDetail(n *graph.Node) {
	if n.IsProject && c.opts.Tracker != nil {
		c.opts.Tracker.TrackView(n.ID)
	}
	if fn := c.opts.Hooks.OnOpenDetail; fn != nil {
		c.queue(func() { fn(n) })
	}
}

// queue schedules fn to run after the lock is released.
func (c *Cloud) queue(fn func()) {
	if fn != nil {
		c.pending = append(c.pending, fn)
	}
}

// unlock releases the lock, runs queued hooks and requests a frame.
func (c *Cloud) unlock(invalidate bool) {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	if invalidate && c.opts.Hooks.OnInvalidate != nil {
		c.opts.Hooks.OnInvalidate()
	}
}

// Load fetches the payload once and builds the cloud. On failure the state
// becomes Failed, the error is logged and the cloud stays empty; there is no
// retry.
func (c *Cloud) Load(ctx context.Context, f Fetcher) error {
	c.mu.Lock()
	c.state, c.err = Loading, nil
	c.mu.Unlock()

	p, err := f.FetchGraph(ctx)
	if err != nil {
		c.fail(err)
		return err
	}
	return c.SetPayload(p)
}

func (c *Cloud) fail(err error) {
	c.mu.Lock()
	c.state, c.err, c.g = Failed, err, nil
	c.ctl.SetGraph(nil)
	c.unlock(true)
	c.log.Error("loading graph failed", zap.Error(err))
}

// SetPayload builds the cloud from an already fetched payload. The entrance
// explosion plays only if the session has not played it yet.
func (c *Cloud) SetPayload(p *graph.Payload) error {
	g, report, err := graph.Build(p, c.opts.Taxonomy)
	if err != nil {
		err = fmt.Errorf("building graph: %w", err)
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.g, c.report, c.state, c.err = g, report, Ready, nil
	res := layout.Compute(g, c.w, c.h, c.opts.Layout)
	rng := rand.New(rand.NewPCG(c.opts.Seed, c.opts.Seed>>1|1))
	layout.Seed(g, c.w, c.h, c.opts.Layout, rng)
	c.ctl.SetGraph(g)

	overview := c.ctl.OverviewTransform()
	c.eng.Cancel()
	c.eng.Set(overview)
	intro := c.opts.Session.MarkIntroPlayed()
	if intro {
		c.eng.Explode(g.Nodes, overview, c.opts.Now())
	} else {
		layout.Settle(g)
	}
	c.unlock(true)

	c.log.Info("graph loaded",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("links", len(g.Links)),
		zap.Bool("intro", intro))
	if len(report.Unresolved) > 0 {
		c.log.Warn("payload nodes without a topic", zap.Strings("ids", report.Unresolved))
	}
	if len(report.Duplicates) > 0 {
		c.log.Warn("duplicate payload ids", zap.Strings("ids", report.Duplicates))
	}
	if report.DroppedLinks > 0 {
		c.log.Debug("links dropped", zap.Int("count", report.DroppedLinks))
	}
	if len(res.Unplaced) > 0 {
		c.log.Warn("nodes without a placed parent", zap.Strings("ids", res.Unplaced))
	}
	return nil
}

// State returns the load state and, when Failed, the load error.
func (c *Cloud) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.err
}

// Graph returns the loaded graph, or nil.
func (c *Cloud) Graph() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g
}

// Report returns what Build dropped or flagged.
func (c *Cloud) Report() graph.BuildReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// Transform returns the current viewport transform.
func (c *Cloud) Transform() geom.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.Transform()
}

// Animating reports which animation is running, if any.
func (c *Cloud) Animating() motion.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.Active()
}

// Focused returns the focused parent id, or "".
func (c *Cloud) Focused() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.Focused()
}

// Hovered returns the id of the node under the pointer, or "".
func (c *Cloud) Hovered() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emph.Hovered()
}

// Detail returns the node whose detail panel is open, or nil.
func (c *Cloud) Detail() *graph.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.Detail()
}

// Size returns the viewport size.
func (c *Cloud) Size() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

// Frame advances animations to now and draws onto canvas. It reports whether
// another frame is needed.
func (c *Cloud) Frame(canvas render.Canvas, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The frame chain always serves the newest animation; a superseded one
	// was already abandoned when its successor started.
	c.eng.Tick(c.eng.Current(), now)
	springing := c.emph.Update()

	f := render.Frame{
		Graph:      c.g,
		Transform:  c.eng.Transform(),
		FocusID:    c.ctl.Focused(),
		HoverID:    c.emph.Hovered(),
		HoverScale: c.emph.Scale(c.emph.Hovered()),
	}
	if c.opts.Waves != nil {
		f.Backdrop = c.opts.Waves.Backdrop(now.Sub(c.born))
	}
	render.Draw(canvas, f, c.opts.Theme)
	return c.eng.Animating() || springing || c.opts.Waves != nil
}

// Resize recomputes targets for a new viewport and re-centers at once:
// on the focused parent at focus zoom if there is one (panel open or not),
// otherwise on the center at zoom 1. Nodes snap to their new targets unless
// the entrance explosion is still running.
func (c *Cloud) Resize(w, h float64) {
	if !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return
	}
	c.mu.Lock()
	c.w, c.h = w, h
	c.ctl.SetViewport(w, h)
	if c.g == nil {
		c.unlock(true)
		return
	}
	layout.Compute(c.g, w, h, c.opts.Layout)

	overview := c.ctl.OverviewTransform()
	if c.eng.Active() == motion.Explosion {
		c.eng.Retarget(overview)
		c.eng.Set(overview)
		c.unlock(true)
		return
	}
	layout.Settle(c.g)
	if n := c.g.Node(c.ctl.Focused()); n != nil && n.Placed {
		c.eng.Set(c.ctl.FocusTransform(n))
	} else {
		c.eng.Set(overview)
	}
	c.unlock(true)
}

// Focus focuses a node by id: a topic becomes the focused parent, a leaf
// focuses its parent and the center returns to overview.
func (c *Cloud) Focus(id string) error {
	c.mu.Lock()
	if c.g == nil {
		c.mu.Unlock()
		return ErrNotReady
	}
	if c.g.Node(id) == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	c.ctl.Focus(id)
	c.unlock(true)
	return nil
}

// Open focuses a leaf's parent and opens its detail panel.
func (c *Cloud) Open(id string) error {
	c.mu.Lock()
	if c.g == nil {
		c.mu.Unlock()
		return ErrNotReady
	}
	n := c.g.Node(id)
	if n == nil || !n.IsLeaf() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if c.ctl.Focused() != n.ParentID {
		c.ctl.Focus(n.ParentID)
	}
	c.ctl.OpenDetail(n)
	c.unlock(true)
	return nil
}

// Overview returns to the overview.
func (c *Cloud) Overview() { c.input(func(ctl *interact.Controller) { ctl.Overview() }) }

// ClosePanel closes the detail panel.
func (c *Cloud) ClosePanel() { c.input(func(ctl *interact.Controller) { ctl.ClosePanel() }) }

// Click applies a click at a screen point.
func (c *Cloud) Click(p geom.Point) { c.input(func(ctl *interact.Controller) { ctl.Click(p) }) }

func (c *Cloud) PointerDown(p geom.Point) {
	c.input(func(ctl *interact.Controller) { ctl.PointerDown(p) })
}

func (c *Cloud) PointerMove(p geom.Point) {
	c.input(func(ctl *interact.Controller) { ctl.PointerMove(p) })
}

func (c *Cloud) PointerUp(p geom.Point) {
	c.input(func(ctl *interact.Controller) { ctl.PointerUp(p) })
}

func (c *Cloud) PointerLeave() { c.input(func(ctl *interact.Controller) { ctl.PointerLeave() }) }

func (c *Cloud) Wheel(p geom.Point, deltaY float64) {
	c.input(func(ctl *interact.Controller) { ctl.Wheel(p, deltaY) })
}

func (c *Cloud) TouchStart(pts []geom.Point) {
	c.input(func(ctl *interact.Controller) { ctl.TouchStart(pts) })
}

func (c *Cloud) TouchMove(pts []geom.Point) {
	c.input(func(ctl *interact.Controller) { ctl.TouchMove(pts) })
}

func (c *Cloud) TouchEnd(remaining []geom.Point) {
	c.input(func(ctl *interact.Controller) { ctl.TouchEnd(remaining) })
}

// Key handles a key press and reports whether it was used.
func (c *Cloud) Key(key string) bool {
	var used bool
	c.input(func(ctl *interact.Controller) { used = ctl.Key(key) })
	return used
}

// Pan shifts the view by a screen delta.
func (c *Cloud) Pan(dx, dy float64) {
	c.input(func(*interact.Controller) { c.eng.Pan(dx, dy) })
}

// Zoom scales the view about the viewport center.
func (c *Cloud) Zoom(factor float64) {
	c.input(func(*interact.Controller) { c.eng.ZoomAt(geom.Pt(c.w/2, c.h/2), factor) })
}

// input runs fn against the controller once the graph is ready.
func (c *Cloud) input(fn func(ctl *interact.Controller)) {
	c.mu.Lock()
	if c.g == nil {
		c.mu.Unlock()
		return
	}
	fn(c.ctl)
	c.unlock(true)
}
