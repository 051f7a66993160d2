package render

import (
	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
)

// Theme holds colours and label metrics.
type Theme struct {
	Background string
	LinkColor  string
	LabelColor string
	FontFamily string
	// LabelWidth is the wrap width for labels, in layout pixels.
	LabelWidth float64
	// LabelGap separates a node's edge from its first label line.
	LabelGap  float64
	GlowAlpha float64
	NodeColor string
}

// DefaultTheme is the dark canvas theme.
func DefaultTheme() Theme {
	return Theme{
		Background: "#0b0e14",
		LinkColor:  "#8b98a9",
		LabelColor: "#eaeef3",
		FontFamily: "Inter, system-ui, sans-serif",
		LabelWidth: 110,
		LabelGap:   4,
		GlowAlpha:  0.35,
		NodeColor:  "#6ea8fe",
	}
}

// Frame is everything needed to draw one frame.
type Frame struct {
	Graph     *graph.Graph
	Transform geom.Transform
	FocusID   string
	HoverID   string
	// HoverScale enlarges the hovered node; 0 means 1.
	HoverScale float64
	// Backdrop, when set, draws in screen space after clearing.
	Backdrop func(c Canvas)
}

// Draw renders f onto c: clear, backdrop, links, nodes, then labels on top.
// Nodes the layout did not place are skipped, as are links touching them.
func Draw(c Canvas, f Frame, theme Theme) {
	c.SetTransform(geom.Identity)
	c.Clear(theme.Background)
	if f.Backdrop != nil {
		f.Backdrop(c)
	}
	g := f.Graph
	if g.IsEmpty() {
		return
	}

	t := f.Transform
	if t.K == 0 {
		t.K = 1
	}
	c.SetTransform(t)

	lineWidth := 1 / t.K
	for _, l := range g.Links {
		a, b := g.Node(l.Source), g.Node(l.Target)
		if a == nil || b == nil || !a.Placed || !b.Placed {
			continue
		}
		c.Line(a.Pos(), b.Pos(), Stroke{
			Color: theme.LinkColor,
			Alpha: LinkAlphaFor(g, l, f.FocusID),
			Width: lineWidth,
		})
	}

	type pending struct {
		n     *graph.Node
		r     float64
		style NodeStyle
	}
	labels := make([]pending, 0, len(g.Nodes))

	for _, n := range g.Nodes {
		if !n.Placed {
			continue
		}
		style := StyleFor(n, f.FocusID)
		r := n.Size
		color := nonEmpty(n.Color, theme.NodeColor)
		if f.HoverID != "" && n.ID == f.HoverID {
			scale := f.HoverScale
			if scale == 0 {
				scale = 1
			}
			c.Glow(n.Pos(), r*2, Fill{Color: color, Alpha: theme.GlowAlpha * style.Alpha})
			r *= scale
		}
		c.Circle(n.Pos(), r, Fill{Color: color, Alpha: style.Alpha})
		if style.ShowLabel && n.Label != "" {
			labels = append(labels, pending{n: n, r: r, style: style})
		}
	}

	for _, p := range labels {
		drawLabel(c, p.n, p.r, p.style.Alpha, theme)
	}
}

func drawLabel(c Canvas, n *graph.Node, r, alpha float64, theme Theme) {
	font := Font{Size: FontSize(n.Label), Family: theme.FontFamily, Bold: n.Kind == graph.KindTopic}
	lines := WrapLabel(n.Label, theme.LabelWidth, func(s string) float64 { return c.MeasureText(s, font) })
	lineHeight := font.Size * 1.2
	y := n.Y + r + theme.LabelGap + font.Size
	for i, line := range lines {
		c.Text(geom.Pt(n.X, y+float64(i)*lineHeight), line, font, Fill{Color: theme.LabelColor, Alpha: alpha})
	}
}

func nonEmpty(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
