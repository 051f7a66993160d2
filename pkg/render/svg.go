package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/recera/mindcloud/pkg/geom"
)

// SVG is a Canvas that builds a standalone SVG document.
type SVG struct {
	w, h      float64
	body      strings.Builder
	groupOpen bool
}

// NewSVG returns an empty w×h SVG canvas.
func NewSVG(w, h float64) *SVG { return &SVG{w: w, h: h} }

func (s *SVG) Size() (float64, float64) { return s.w, s.h }

func (s *SVG) Clear(bg string) {
	s.closeGroup()
	s.body.Reset()
	if bg != "" {
		fmt.Fprintf(&s.body, `<rect width="%s" height="%s" fill="%s"/>`, num(s.w), num(s.h), attr(bg))
	}
}

func (s *SVG) SetTransform(t geom.Transform) {
	s.closeGroup()
	if t == geom.Identity {
		return
	}
	fmt.Fprintf(&s.body, `<g transform="matrix(%s 0 0 %s %s %s)">`, num(t.K), num(t.K), num(t.X), num(t.Y))
	s.groupOpen = true
}

func (s *SVG) closeGroup() {
	if s.groupOpen {
		s.body.WriteString("</g>")
		s.groupOpen = false
	}
}

func (s *SVG) Line(a, b geom.Point, st Stroke) {
	fmt.Fprintf(&s.body, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-opacity="%s" stroke-width="%s"/>`,
		num(a.X), num(a.Y), num(b.X), num(b.Y), attr(st.Color), num(st.Alpha), num(st.Width))
}

func (s *SVG) Circle(c geom.Point, r float64, f Fill) {
	fmt.Fprintf(&s.body, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`,
		num(c.X), num(c.Y), num(r), attr(f.Color), num(f.Alpha))
}

func (s *SVG) Glow(c geom.Point, r float64, f Fill) {
	fmt.Fprintf(&s.body, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s" filter="url(#glow)"/>`,
		num(c.X), num(c.Y), num(r), attr(f.Color), num(f.Alpha))
}

func (s *SVG) Text(p geom.Point, text string, font Font, f Fill) {
	weight := "normal"
	if font.Bold {
		weight = "600"
	}
	fmt.Fprintf(&s.body, `<text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="%s" font-weight="%s" fill="%s" fill-opacity="%s">%s</text>`,
		num(p.X), num(p.Y), attr(font.Family), num(font.Size), weight, attr(f.Color), num(f.Alpha), html.EscapeString(text))
}

// MeasureText approximates proportional text as 0.55em per terminal cell,
// so wide runes count double.
func (s *SVG) MeasureText(text string, font Font) float64 {
	return float64(runewidth.StringWidth(text)) * font.Size * 0.55
}

// String returns the complete document.
func (s *SVG) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(s.w), num(s.h), num(s.w), num(s.h))
	b.WriteString(`<defs><filter id="glow" x="-50%" y="-50%" width="200%" height="200%"><feGaussianBlur stdDeviation="4"/></filter></defs>`)
	b.WriteString(s.body.String())
	if s.groupOpen {
		b.WriteString("</g>")
	}
	b.WriteString("</svg>\n")
	return b.String()
}

// WriteTo writes the document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func num(v float64) string {
	out := fmt.Sprintf("%.2f", v)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if out == "-0" {
		return "0"
	}
	return out
}

func attr(s string) string { return html.EscapeString(s) }
