package render

import (
	"strings"
	"unicode/utf8"
)

// MaxLabelLines bounds wrapped labels.
const MaxLabelLines = 3

const ellipsis = "…"

// FontSize returns the label font size for label: 12px, shrinking one step
// past each of 20, 30, 40 and 50 characters.
func FontSize(label string) float64 {
	n := utf8.RuneCountInString(label)
	switch {
	case n > 50:
		return 8
	case n > 40:
		return 9
	case n > 30:
		return 10
	case n > 20:
		return 11
	default:
		return 12
	}
}

// WrapLabel greedily wraps label into lines no wider than width. At most
// MaxLabelLines are returned; when text is cut the last line ends in "…".
// A single word wider than width gets a line to itself.
func WrapLabel(label string, width float64, measure func(string) float64) []string {
	words := strings.Fields(label)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := ""
	for _, w := range words {
		if cur == "" {
			cur = w
			continue
		}
		if measure(cur+" "+w) <= width {
			cur += " " + w
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	lines = append(lines, cur)

	if len(lines) <= MaxLabelLines {
		return lines
	}
	lines = lines[:MaxLabelLines]
	lines[MaxLabelLines-1] = ellipsize(lines[MaxLabelLines-1], width, measure)
	return lines
}

func ellipsize(s string, width float64, measure func(string) float64) string {
	for s != "" && measure(s+ellipsis) > width {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return strings.TrimRight(s, " ") + ellipsis
}
