package motion

import (
	"time"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
)

// Kind names the animation currently driving the engine.
type Kind int

const (
	None Kind = iota
	Explosion
	Focus
	Overview
)

func (k Kind) String() string {
	switch k {
	case Explosion:
		return "explosion"
	case Focus:
		return "focus"
	case Overview:
		return "overview"
	default:
		return "none"
	}
}

// Animation durations.
const (
	ExplosionDuration = 1500 * time.Millisecond
	FocusDuration     = 500 * time.Millisecond
	OverviewDuration  = 500 * time.Millisecond
)

// Token identifies one started animation. Frame callbacks carry the token
// they were scheduled for; once another animation starts the old token is
// stale and ticking it does nothing.
type Token uint64

type animation struct {
	kind  Kind
	token Token
	start time.Time
	dur   time.Duration
	ease  Easing

	from, to geom.Transform

	// explosion only
	nodes []*graph.Node
}

// Engine owns the viewport transform and at most one running animation.
// It is not safe for concurrent use; callers serialise access.
type Engine struct {
	transform geom.Transform
	last      Token
	cur       *animation
}

// NewEngine returns an idle engine starting at t.
func NewEngine(t geom.Transform) *Engine {
	if t.K == 0 {
		t.K = 1
	}
	t.K = geom.ClampZoom(t.K)
	return &Engine{transform: t}
}

// Transform returns the current viewport transform.
func (e *Engine) Transform() geom.Transform { return e.transform }

// Active returns the kind of the running animation.
func (e *Engine) Active() Kind {
	if e.cur == nil {
		return None
	}
	return e.cur.kind
}

// Animating reports whether an animation is running.
func (e *Engine) Animating() bool { return e.cur != nil }

// Current returns the running animation's token, or 0.
func (e *Engine) Current() Token {
	if e.cur == nil {
		return 0
	}
	return e.cur.token
}

// Explode starts the entrance animation: each node moves from its start
// position to its layout target along an elastic curve; on completion the
// transform becomes final.
func (e *Engine) Explode(nodes []*graph.Node, final geom.Transform, now time.Time) Token {
	return e.begin(&animation{
		kind:  Explosion,
		start: now,
		dur:   ExplosionDuration,
		ease:  EaseOutElastic,
		from:  e.transform,
		to:    final,
		nodes: nodes,
	})
}

// FocusOn animates the transform to target with a cubic ease-out. Any
// running animation is cancelled first; the last call wins.
func (e *Engine) FocusOn(target geom.Transform, now time.Time) Token {
	return e.animateTo(Focus, target, FocusDuration, now)
}

// ReturnToOverview animates back to the overview transform. It is a no-op
// when already there with nothing running, and keeps an in-flight overview
// animation heading to the same target.
func (e *Engine) ReturnToOverview(target geom.Transform, now time.Time) Token {
	if e.cur == nil && geom.NearlyEqual(e.transform, target, 1e-9) {
		return 0
	}
	if e.cur != nil && e.cur.kind == Overview && geom.NearlyEqual(e.cur.to, target, 1e-9) {
		return e.cur.token
	}
	return e.animateTo(Overview, target, OverviewDuration, now)
}

func (e *Engine) animateTo(kind Kind, target geom.Transform, d time.Duration, now time.Time) Token {
	e.Cancel()
	target.K = geom.ClampZoom(target.K)
	return e.begin(&animation{
		kind:  kind,
		start: now,
		dur:   d,
		ease:  EaseOutCubic,
		from:  e.transform,
		to:    target,
	})
}

func (e *Engine) begin(a *animation) Token {
	if e.cur != nil {
		e.Cancel()
	}
	e.last++
	a.token = e.last
	e.cur = a
	return a.token
}

// Cancel stops the running animation. A cancelled explosion snaps every
// node to its target and applies its final transform; a cancelled transform
// animation leaves the transform where it is.
func (e *Engine) Cancel() {
	a := e.cur
	if a == nil {
		return
	}
	e.cur = nil
	if a.kind == Explosion {
		for _, n := range a.nodes {
			if n.Placed {
				n.X, n.Y = n.TargetX, n.TargetY
			}
		}
		e.transform = a.to
	}
}

// Retarget changes the transform a running explosion finishes on. It does
// nothing when no explosion is running.
func (e *Engine) Retarget(final geom.Transform) {
	if e.cur != nil && e.cur.kind == Explosion {
		final.K = geom.ClampZoom(final.K)
		e.cur.to = final
	}
}

// Set replaces the transform, cancelling any running transform animation.
// A running explosion keeps animating node positions.
func (e *Engine) Set(t geom.Transform) {
	e.cancelTransform()
	t.K = geom.ClampZoom(t.K)
	e.transform = t
}

// Pan shifts the transform by a screen-space delta.
func (e *Engine) Pan(dx, dy float64) {
	t := e.transform
	t.X += dx
	t.Y += dy
	e.Set(t)
}

// ZoomAt scales the transform about a screen-space anchor.
func (e *Engine) ZoomAt(anchor geom.Point, factor float64) {
	e.Set(geom.ZoomAt(e.transform, anchor, factor))
}

func (e *Engine) cancelTransform() {
	if e.cur != nil && e.cur.kind != Explosion {
		e.cur = nil
	}
}

// Tick advances the animation identified by tok to time now and reports
// whether it is still running. Stale tokens do nothing.
func (e *Engine) Tick(tok Token, now time.Time) bool {
	if e.cur == nil || e.cur.token != tok {
		return false
	}
	return e.step(now)
}

func (e *Engine) step(now time.Time) bool {
	a := e.cur
	t := 1.0
	if a.dur > 0 {
		t = float64(now.Sub(a.start)) / float64(a.dur)
	}
	t = clamp01(t)
	p := a.ease(t)

	switch a.kind {
	case Explosion:
		for _, n := range a.nodes {
			if !n.Placed {
				continue
			}
			n.X = geom.Lerp(n.StartX, n.TargetX, p)
			n.Y = geom.Lerp(n.StartY, n.TargetY, p)
		}
		if t >= 1 {
			e.transform = a.to
		}
	default:
		next := geom.LerpTransform(a.from, a.to, p)
		next.K = geom.ClampZoom(next.K)
		e.transform = next
	}

	if t >= 1 {
		if a.kind != Explosion {
			e.transform = a.to
		}
		e.cur = nil
		return false
	}
	return true
}
