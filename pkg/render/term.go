package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/recera/mindcloud/pkg/geom"
)

// Terminal cell geometry in screen pixels. Cells are roughly twice as tall
// as they are wide.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

type cell struct {
	r     rune
	color string
	bg    string
	faint bool
	bold  bool
	// cont marks the trailing column of a wide rune.
	cont bool
}

// Term is a Canvas backed by a grid of terminal cells. Screen pixels map to
// cells through CellWidth and CellHeight.
type Term struct {
	cols, rows int
	grid       [][]cell
	t          geom.Transform
	bg         string
}

// NewTerm returns a cols×rows canvas.
func NewTerm(cols, rows int) *Term {
	tc := &Term{t: geom.Identity}
	tc.Resize(cols, rows)
	return tc
}

// Resize changes the grid size and clears it.
func (tc *Term) Resize(cols, rows int) {
	tc.cols, tc.rows = max(cols, 1), max(rows, 1)
	tc.grid = make([][]cell, tc.rows)
	for y := range tc.grid {
		tc.grid[y] = make([]cell, tc.cols)
	}
	tc.Clear(tc.bg)
}

// Cells returns the grid size.
func (tc *Term) Cells() (cols, rows int) { return tc.cols, tc.rows }

func (tc *Term) Size() (float64, float64) {
	return float64(tc.cols) * CellWidth, float64(tc.rows) * CellHeight
}

func (tc *Term) Clear(bg string) {
	tc.bg = bg
	for y := range tc.grid {
		for x := range tc.grid[y] {
			tc.grid[y][x] = cell{r: ' '}
		}
	}
}

func (tc *Term) SetTransform(t geom.Transform) {
	if t.K == 0 {
		t.K = 1
	}
	tc.t = t
}

// toCell maps a layout point to a cell.
func (tc *Term) toCell(p geom.Point) (int, int) {
	s := geom.LayoutToScreen(tc.t, p)
	return int(math.Floor(s.X / CellWidth)), int(math.Floor(s.Y / CellHeight))
}

func (tc *Term) in(x, y int) bool { return x >= 0 && y >= 0 && x < tc.cols && y < tc.rows }

func (tc *Term) set(x, y int, r rune, color string, alpha float64, bold bool) {
	if !tc.in(x, y) {
		return
	}
	tc.grid[y][x] = cell{r: r, color: color, faint: alpha < 0.5, bold: bold, bg: tc.grid[y][x].bg}
}

// Line draws a dotted Bresenham line.
func (tc *Term) Line(a, b geom.Point, s Stroke) {
	x0, y0 := tc.toCell(a)
	x1, y1 := tc.toCell(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	// Bound the walk so far off-screen endpoints stay cheap.
	for steps := 0; steps < 4*(tc.cols+tc.rows); steps++ {
		if tc.in(x0, y0) && tc.grid[y0][x0].r == ' ' {
			tc.set(x0, y0, '·', s.Color, s.Alpha, false)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Circle fills every cell whose center lies inside the circle, and always
// at least the cell holding c.
func (tc *Term) Circle(c geom.Point, r float64, f Fill) {
	cx, cy := tc.toCell(c)
	tc.set(cx, cy, '●', f.Color, f.Alpha, false)
	s := geom.LayoutToScreen(tc.t, c)
	rs := r * tc.t.K
	rx, ry := int(rs/CellWidth)+1, int(rs/CellHeight)+1
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			mid := geom.Pt((float64(x)+0.5)*CellWidth, (float64(y)+0.5)*CellHeight)
			if mid.Dist(s) <= rs {
				tc.set(x, y, '●', f.Color, f.Alpha, false)
			}
		}
	}
}

// Glow tints the background of cells around c.
func (tc *Term) Glow(c geom.Point, r float64, f Fill) {
	cx, cy := tc.toCell(c)
	s := geom.LayoutToScreen(tc.t, c)
	rs := math.Max(r*tc.t.K, CellWidth)
	rx, ry := int(rs/CellWidth)+1, int(rs/CellHeight)+1
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			mid := geom.Pt((float64(x)+0.5)*CellWidth, (float64(y)+0.5)*CellHeight)
			if tc.in(x, y) && mid.Dist(s) <= rs {
				tc.grid[y][x].bg = f.Color
			}
		}
	}
}

// Text writes s centered on p's column.
func (tc *Term) Text(p geom.Point, s string, font Font, f Fill) {
	cx, cy := tc.toCell(p)
	x := cx - runewidth.StringWidth(s)/2
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		tc.set(x, cy, r, f.Color, f.Alpha, font.Bold)
		for i := 1; i < w; i++ {
			if tc.in(x+i, cy) {
				tc.grid[cy][x+i] = cell{cont: true}
			}
		}
		x += w
	}
}

// MeasureText returns the pixel width s occupies once zoom is undone, so
// labels wrap to the same number of columns at any zoom.
func (tc *Term) MeasureText(s string, font Font) float64 {
	return float64(runewidth.StringWidth(s)) * CellWidth / tc.t.K
}

// Rune returns the rune at a cell, or 0 outside the grid.
func (tc *Term) Rune(x, y int) rune {
	if !tc.in(x, y) {
		return 0
	}
	return tc.grid[y][x].r
}

// Plain returns the grid without styling, one line per row.
func (tc *Term) Plain() string {
	var b strings.Builder
	for y, row := range tc.grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			if !c.cont {
				b.WriteRune(c.r)
			}
		}
	}
	return b.String()
}

// Render returns the grid styled with lipgloss. Runs of identically styled
// cells share one escape sequence.
func (tc *Term) Render() string {
	var b strings.Builder
	for y, row := range tc.grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var prev cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(tc.style(prev).Render(run.String()))
			run.Reset()
		}
		for x, c := range row {
			if c.cont {
				continue
			}
			if x > 0 && !sameStyle(c, prev) {
				flush()
			}
			prev = c
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}

func (tc *Term) style(c cell) lipgloss.Style {
	st := lipgloss.NewStyle()
	if c.color != "" {
		st = st.Foreground(lipgloss.Color(c.color))
	}
	bg := c.bg
	if bg == "" {
		bg = tc.bg
	}
	if bg != "" {
		st = st.Background(lipgloss.Color(bg))
	}
	return st.Faint(c.faint).Bold(c.bold)
}

func sameStyle(a, b cell) bool {
	return a.color == b.color && a.bg == b.bg && a.faint == b.faint && a.bold == b.bold
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
