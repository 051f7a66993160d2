// Package interact turns pointer, touch, wheel and key input into focus
// changes and viewport motion.
package interact

import (
	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
)

// HitPadding is added to every node radius when hit testing, in layout units.
const HitPadding = 4.0

// HitTest maps a screen point into layout space and returns the first placed
// node, in graph order, whose circle grown by padding contains it. It returns
// nil when no node is hit.
func HitTest(g *graph.Graph, t geom.Transform, screen geom.Point, padding float64) *graph.Node {
	if g.IsEmpty() {
		return nil
	}
	p := geom.ScreenToLayout(t, screen)
	for _, n := range g.Nodes {
		if !n.Placed {
			continue
		}
		if n.Pos().Dist(p) <= n.Size+padding {
			return n
		}
	}
	return nil
}
