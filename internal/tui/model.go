// Package tui is a terminal explorer for the mind cloud. It drives the same
// Cloud the browser viewer uses and draws it onto a character grid.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/mindcloud"
	"github.com/recera/mindcloud/pkg/render"
)

const (
	// frameInterval paces animation frames; terminals gain nothing past 30fps.
	frameInterval = time.Second / 30
	// panStep is one arrow-key pan, in screen pixels.
	panStep   = 4 * render.CellWidth
	zoomStep  = 1.25
	chromeRow = 1 // status bar
)

type frameMsg time.Time

// Model is the explorer's bubbletea model.
type Model struct {
	cloud  *mindcloud.Cloud
	canvas *render.Term
	keys   KeyMap
	help   help.Model
	now    func() time.Time

	width, height int

	// topic is the index into the center's children last focused with tab.
	topic int
	// leaf is the index into the focused node's children last opened with
	// enter.
	leaf int

	ticking  bool
	showHelp bool
	quitting bool
	status   string
}

// NewModel returns an explorer for c, which should already be loaded. The
// frame that Init schedules counts as pending from the start.
func NewModel(c *mindcloud.Cloud) Model {
	return Model{
		ticking: true,
		cloud:   c,
		canvas:  render.NewTerm(80, 24-chromeRow),
		keys:    DefaultKeyMap,
		help:    help.New(),
		now:     time.Now,
		topic:   -1,
		leaf:    -1,
	}
}

// Init starts the first frame.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// request schedules a frame unless one is already pending.
func (m *Model) request() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.tick()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		rows := max(msg.Height-chromeRow, 1)
		m.canvas.Resize(max(msg.Width, 1), rows)
		m.cloud.Resize(m.canvas.Size())
		return m, m.request()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.handleKey(msg)
		return m, m.request()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.request()

	case frameMsg:
		m.ticking = false
		if m.cloud.Frame(m.canvas, m.now()) {
			return m, m.request()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Back):
		m.cloud.Key("Escape")
		m.leaf = -1
	case key.Matches(msg, m.keys.Up):
		m.cloud.Pan(0, panStep)
	case key.Matches(msg, m.keys.Down):
		m.cloud.Pan(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		m.cloud.Pan(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.cloud.Pan(-panStep, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.cloud.Zoom(zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.cloud.Zoom(1 / zoomStep)
	case key.Matches(msg, m.keys.Next):
		m.cycleTopic(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycleTopic(-1)
	case key.Matches(msg, m.keys.Enter):
		m.openNext()
	}
}

// cycleTopic focuses the next top-level topic in direction dir.
func (m *Model) cycleTopic(dir int) {
	g := m.cloud.Graph()
	if g.IsEmpty() {
		return
	}
	topics := g.Children(g.Center().ID)
	if len(topics) == 0 {
		return
	}
	m.topic = (m.topic + dir + len(topics)) % len(topics)
	m.leaf = -1
	if err := m.cloud.Focus(topics[m.topic].ID); err != nil {
		m.status = err.Error()
	}
}

// openNext steps through the focused node's children: a leaf opens its
// detail, a sub-topic becomes the focus.
func (m *Model) openNext() {
	g := m.cloud.Graph()
	if g.IsEmpty() {
		return
	}
	focused := m.cloud.Focused()
	if focused == "" {
		m.status = "tab to pick a topic first"
		return
	}
	children := g.Children(focused)
	if len(children) == 0 {
		return
	}
	m.leaf = (m.leaf + 1) % len(children)
	n := children[m.leaf]
	var err error
	if n.IsLeaf() {
		err = m.cloud.Open(n.ID)
	} else {
		err = m.cloud.Focus(n.ID)
		m.leaf = -1
	}
	if err != nil {
		m.status = err.Error()
	}
}

// cellCenter maps a terminal cell to the screen point at its center.
func cellCenter(x, y int) geom.Point {
	return geom.Pt(float64(x)*render.CellWidth+render.CellWidth/2, float64(y)*render.CellHeight+render.CellHeight/2)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := cellCenter(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.cloud.Wheel(p, -1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.cloud.Wheel(p, 1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.cloud.PointerDown(p)
	case msg.Action == tea.MouseActionRelease:
		m.cloud.PointerUp(p)
	case msg.Action == tea.MouseActionMotion:
		m.cloud.PointerMove(p)
	}
}

// Detail returns the node whose detail panel is open, or nil.
func (m Model) Detail() *graph.Node { return m.cloud.Detail() }

// Run starts the explorer full-screen with mouse support and blocks until
// the user quits.
func Run(c *mindcloud.Cloud) error {
	p := tea.NewProgram(NewModel(c), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
