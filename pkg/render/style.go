package render

import "github.com/recera/mindcloud/pkg/graph"

// Opacity levels.
const (
	LinkAlpha        = 0.25
	LinkAlphaMuted   = 0.08
	LinkAlphaFocused = 0.4

	TopicAlphaMuted = 0.3
	LeafAlphaMuted  = 0.15
)

// NodeStyle is how one node is drawn for a given focus.
type NodeStyle struct {
	Alpha     float64
	ShowLabel bool
}

// StyleFor applies the focus rules to n. focusID is "" in overview.
//
//   - center: always opaque, never labelled
//   - topic: labelled; muted when a different node is focused
//   - leaf: in overview opaque and unlabelled; when focused, opaque and
//     labelled only under the focused parent, muted otherwise
func StyleFor(n *graph.Node, focusID string) NodeStyle {
	switch n.Kind {
	case graph.KindCenter:
		return NodeStyle{Alpha: 1}
	case graph.KindTopic:
		if focusID != "" && focusID != n.ID {
			return NodeStyle{Alpha: TopicAlphaMuted, ShowLabel: true}
		}
		return NodeStyle{Alpha: 1, ShowLabel: true}
	default:
		if focusID == "" {
			return NodeStyle{Alpha: 1}
		}
		if n.ParentID == focusID {
			return NodeStyle{Alpha: 1, ShowLabel: true}
		}
		return NodeStyle{Alpha: LeafAlphaMuted}
	}
}

// LinkAlphaFor returns the opacity of l. With focus active, links touching the
// focused node or one of its children are raised and all others muted.
func LinkAlphaFor(g *graph.Graph, l graph.Link, focusID string) float64 {
	if focusID == "" {
		return LinkAlpha
	}
	if l.Touches(focusID) || childOf(g, l.Source, focusID) || childOf(g, l.Target, focusID) {
		return LinkAlphaFocused
	}
	return LinkAlphaMuted
}

func childOf(g *graph.Graph, id, parent string) bool {
	n := g.Node(id)
	return n != nil && n.ParentID == parent
}
