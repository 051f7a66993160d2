package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	header = color.New(color.FgCyan, color.Bold)
)

// table writes rows as aligned columns. Widths are measured in terminal
// cells so labels with wide runes stay aligned.
type table struct {
	head []string
	rows [][]string
}

func (t *table) add(cols ...string) { t.rows = append(t.rows, cols) }

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.head))
	for i, h := range t.head {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(c))
			}
		}
	}
	line := func(cols []string) string {
		parts := make([]string, len(cols))
		for i, c := range cols {
			if i == len(cols)-1 {
				parts[i] = c
				continue
			}
			parts[i] = runewidth.FillRight(c, widths[i])
		}
		return strings.Join(parts, "  ")
	}
	header.Fprintln(w, line(t.head))
	for _, r := range t.rows {
		fmt.Fprintln(w, line(r))
	}
}
