package render

import (
	"unicode/utf8"

	"github.com/recera/mindcloud/pkg/geom"
)

// Op is one recorded canvas call.
type Op struct {
	Kind      string // clear, transform, line, circle, glow, text
	Points    []geom.Point
	Radius    float64
	Text      string
	Color     string
	Alpha     float64
	Width     float64
	Font      Font
	Transform geom.Transform
}

// Recorder is a Canvas that keeps every call. Text is measured as 0.5em
// per rune.
type Recorder struct {
	W, H float64
	Ops  []Op
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(w, h float64) *Recorder { return &Recorder{W: w, H: h} }

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

func (r *Recorder) Clear(bg string) {
	r.Ops = append(r.Ops, Op{Kind: "clear", Color: bg})
}

func (r *Recorder) SetTransform(t geom.Transform) {
	r.Ops = append(r.Ops, Op{Kind: "transform", Transform: t})
}

func (r *Recorder) Line(a, b geom.Point, s Stroke) {
	r.Ops = append(r.Ops, Op{Kind: "line", Points: []geom.Point{a, b}, Color: s.Color, Alpha: s.Alpha, Width: s.Width})
}

func (r *Recorder) Circle(c geom.Point, rad float64, f Fill) {
	r.Ops = append(r.Ops, Op{Kind: "circle", Points: []geom.Point{c}, Radius: rad, Color: f.Color, Alpha: f.Alpha})
}

func (r *Recorder) Glow(c geom.Point, rad float64, f Fill) {
	r.Ops = append(r.Ops, Op{Kind: "glow", Points: []geom.Point{c}, Radius: rad, Color: f.Color, Alpha: f.Alpha})
}

func (r *Recorder) Text(p geom.Point, s string, font Font, f Fill) {
	r.Ops = append(r.Ops, Op{Kind: "text", Points: []geom.Point{p}, Text: s, Font: font, Color: f.Color, Alpha: f.Alpha})
}

func (r *Recorder) MeasureText(s string, font Font) float64 {
	return float64(utf8.RuneCountInString(s)) * font.Size * 0.5
}

// Filter returns the recorded ops of one kind.
func (r *Recorder) Filter(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset drops all recorded ops.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
