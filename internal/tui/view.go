package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/mindcloud"
)

var (
	primaryColor = lipgloss.Color("#6ea8fe")
	mutedColor   = lipgloss.Color("#94a3b8")
	errorColor   = lipgloss.Color("#ef4444")

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#eaeef3")).
			Background(lipgloss.Color("#1c2333"))

	focusStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)
)

// panelWidth is the detail panel's outer width in cells.
const panelWidth = 44

// View renders the canvas, the detail panel over its right edge and the
// status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	state, err := m.cloud.State()
	var body string
	switch state {
	case mindcloud.Loading:
		body = mutedStyle.Render("Loading mind cloud...")
	case mindcloud.Failed:
		body = errorStyle.Render(fmt.Sprintf("Could not load the mind cloud: %v", err))
	default:
		body = m.canvas.Render()
		if n := m.cloud.Detail(); n != nil && m.width > panelWidth+10 {
			body = overlayRight(body, renderPanel(n), m.width)
		}
	}
	return lipgloss.Place(m.width, m.height-chromeRow, lipgloss.Left, lipgloss.Top, body) + "\n" + m.renderStatus()
}

func (m Model) renderStatus() string {
	left := "overview"
	if id := m.cloud.Focused(); id != "" {
		if n := m.cloud.Graph().Node(id); n != nil {
			left = focusStyle.Render(n.Label)
		}
	}
	if m.status != "" {
		left += "  " + errorStyle.Render(m.status)
	}
	right := mutedStyle.Render(fmt.Sprintf("zoom %.2f", m.cloud.Transform().K)) + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return statusStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderPanel formats a leaf's details.
func renderPanel(n *graph.Node) string {
	inner := panelWidth - 4
	wrap := lipgloss.NewStyle().Width(inner)
	var b strings.Builder
	b.WriteString(titleStyle.Render(wrap.Render(n.Label)))
	switch {
	case n.Project != nil:
		p := n.Project
		if p.Description != "" {
			b.WriteString("\n\n" + wrap.Render(p.Description))
		}
		meta := []string{}
		if p.Language != "" {
			meta = append(meta, p.Language)
		}
		meta = append(meta, fmt.Sprintf("★ %d", p.Stars), fmt.Sprintf("forks %d", p.Forks))
		b.WriteString("\n\n" + mutedStyle.Render(strings.Join(meta, " · ")))
		if len(p.Technologies) > 0 {
			b.WriteString("\n" + mutedStyle.Render(wrap.Render(strings.Join(p.Technologies, ", "))))
		}
		for _, link := range []string{p.GithubURL, p.LiveURL} {
			if link != "" {
				b.WriteString("\n" + link)
			}
		}
	case n.Post != nil:
		p := n.Post
		if p.Excerpt != "" {
			b.WriteString("\n\n" + wrap.Render(p.Excerpt))
		}
		meta := []string{}
		if p.CategoryName != "" {
			meta = append(meta, p.CategoryName)
		}
		if p.PublishedAt != nil {
			meta = append(meta, p.PublishedAt.Format("Jan 2, 2006"))
		}
		meta = append(meta, fmt.Sprintf("%d views", p.ViewCount))
		b.WriteString("\n\n" + mutedStyle.Render(strings.Join(meta, " · ")))
		if len(p.Tags) > 0 {
			b.WriteString("\n" + mutedStyle.Render(wrap.Render("#"+strings.Join(p.Tags, " #"))))
		}
	}
	b.WriteString("\n\n" + mutedStyle.Render("esc to close"))
	return panelStyle.Width(panelWidth - 2).Render(b.String())
}

// overlayRight draws panel over the right edge of base's first lines.
func overlayRight(base, panel string, width int) string {
	lines := strings.Split(base, "\n")
	keep := max(width-lipgloss.Width(panel), 0)
	cut := lipgloss.NewStyle().MaxWidth(keep)
	for i, p := range strings.Split(panel, "\n") {
		if i >= len(lines) {
			break
		}
		left := cut.Render(lines[i])
		lines[i] = left + strings.Repeat(" ", max(keep-lipgloss.Width(left), 0)) + p
	}
	return strings.Join(lines, "\n")
}
