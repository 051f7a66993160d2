// Package layout assigns deterministic radial target positions to a cloud:
// the center at the canvas middle, top-level topics on a ring around it,
// sub-topics fanned around their topic, and leaves fanned around their parent.
package layout

import (
	"math"
	"math/rand/v2"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
)

// Options holds the layout constants. Radii are fractions of min(width, height);
// angles are radians.
type Options struct {
	TopicRadius     float64
	SubtopicRadius  float64
	SubtopicArc     float64
	LeafRadius      float64
	LeafArcPerChild float64
	LeafArcMax      float64
	StartAngle      float64
	// Jitter is the half-width of the random offset applied by Seed.
	Jitter float64
}

// DefaultOptions returns the standard mind cloud geometry.
func DefaultOptions() Options {
	return Options{
		TopicRadius:     0.28,
		SubtopicRadius:  0.20,
		SubtopicArc:     deg(126),
		LeafRadius:      0.15,
		LeafArcPerChild: deg(54),
		LeafArcMax:      deg(216),
		StartAngle:      deg(-90),
		Jitter:          4,
	}
}

func deg(d float64) float64 { return d * math.Pi / 180 }

// Result summarises a Compute pass.
type Result struct {
	Placed   int
	Unplaced []string
}

// Compute writes TargetX, TargetY, Angle and Placed on every node of g for a
// width×height canvas. Nodes whose parent could not be placed are left with
// Placed == false and reported in Result.Unplaced. Compute never touches X/Y.
func Compute(g *graph.Graph, width, height float64, opts Options) Result {
	var res Result
	if g.IsEmpty() {
		return res
	}
	for _, n := range g.Nodes {
		n.Placed = false
	}

	center := g.Center()
	if center == nil {
		for _, n := range g.Nodes {
			res.Unplaced = append(res.Unplaced, n.ID)
		}
		return res
	}

	unit := math.Min(width, height)
	mid := geom.Pt(width/2, height/2)
	place(center, mid, 0)

	topics := childrenOfKind(g, center.ID, graph.KindTopic)
	if len(topics) > 0 {
		step := 2 * math.Pi / float64(len(topics))
		for i, t := range topics {
			a := opts.StartAngle + float64(i)*step
			place(t, mid.Polar(opts.TopicRadius*unit, a), a)
		}
	}

	for _, t := range topics {
		subs := childrenOfKind(g, t.ID, graph.KindTopic)
		fan(t, subs, opts.SubtopicRadius*unit, opts.SubtopicArc)
	}

	for _, n := range g.Nodes {
		if n.Kind == graph.KindCenter || n.Kind == graph.KindPost {
			continue
		}
		if !n.Placed {
			continue
		}
		leaves := childrenOfKind(g, n.ID, graph.KindPost)
		fan(n, leaves, opts.LeafRadius*unit, LeafArc(len(leaves), opts))
	}

	for _, n := range g.Nodes {
		if n.Placed {
			res.Placed++
		} else {
			res.Unplaced = append(res.Unplaced, n.ID)
		}
	}
	return res
}

// LeafArc returns the arc width used to fan n leaves.
func LeafArc(n int, opts Options) float64 {
	return math.Min(opts.LeafArcMax, opts.LeafArcPerChild*float64(n))
}

// FanAngles returns n angles spread across arc, centered on base. A single
// child sits exactly on base.
func FanAngles(base, arc float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{base}
	}
	out := make([]float64, n)
	start := base - arc/2
	step := arc / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func fan(parent *graph.Node, kids []*graph.Node, radius, arc float64) {
	if !parent.Placed || len(kids) == 0 {
		return
	}
	origin := parent.Target()
	for i, a := range FanAngles(parent.Angle, arc, len(kids)) {
		place(kids[i], origin.Polar(radius, a), a)
	}
}

func place(n *graph.Node, p geom.Point, angle float64) {
	n.TargetX, n.TargetY = p.X, p.Y
	n.Angle = angle
	n.Placed = true
}

func childrenOfKind(g *graph.Graph, id string, kind graph.Kind) []*graph.Node {
	var out []*graph.Node
	for _, c := range g.Children(id) {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Seed moves every node to the canvas center plus a random offset of at most
// opts.Jitter on each axis, and records that as the node's start position.
func Seed(g *graph.Graph, width, height float64, opts Options, rng *rand.Rand) {
	if g.IsEmpty() {
		return
	}
	mid := geom.Pt(width/2, height/2)
	for _, n := range g.Nodes {
		dx, dy := 0.0, 0.0
		if opts.Jitter > 0 && rng != nil {
			dx = (rng.Float64()*2 - 1) * opts.Jitter
			dy = (rng.Float64()*2 - 1) * opts.Jitter
		}
		n.X, n.Y = mid.X+dx, mid.Y+dy
		n.StartX, n.StartY = n.X, n.Y
	}
}

// Settle moves every placed node straight to its target.
func Settle(g *graph.Graph) {
	if g.IsEmpty() {
		return
	}
	for _, n := range g.Nodes {
		if n.Placed {
			n.X, n.Y = n.TargetX, n.TargetY
		}
	}
}
