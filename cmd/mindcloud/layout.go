package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/layout"
)

func newLayoutCommand(a *app) *cobra.Command {
	var url string
	var kind string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the computed layout as a table",
		Long: `Build the cloud from the payload and print every node with its parent,
kind, size and layout target for the configured canvas, followed by the
build report: unresolved leaves, duplicates and dropped links.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.layout(cmd.Context(), url, graph.Kind(kind), cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&url, "url", "", "fetch the payload from this server instead of a file")
	flags.StringVar(&kind, "kind", "", "only list nodes of this kind (center, topic, post)")
	flags.Float64("width", 0, "canvas width in px")
	flags.Float64("height", 0, "canvas height in px")
	bind(flags, "width", "canvas.width")
	bind(flags, "height", "canvas.height")
	return cmd
}

func (a *app) layout(ctx context.Context, url string, kind graph.Kind, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tax, err := taxonomy(a.cfg)
	if err != nil {
		return err
	}
	src, _ := source(a.cfg, url)
	p, err := src.FetchGraph(ctx)
	if err != nil {
		return err
	}
	g, report, err := graph.Build(p, tax)
	if err != nil {
		return err
	}
	res := layout.Compute(g, a.cfg.Canvas.Width, a.cfg.Canvas.Height, layout.DefaultOptions())

	t := &table{head: []string{"ID", "KIND", "PARENT", "SIZE", "TARGET", "ANGLE", "LABEL"}}
	for _, n := range g.Nodes {
		if kind != "" && n.Kind != kind {
			continue
		}
		target := "-"
		angle := "-"
		if n.Placed {
			target = fmt.Sprintf("%.0f,%.0f", n.TargetX, n.TargetY)
			angle = fmt.Sprintf("%.0f°", n.Angle*180/math.Pi)
		}
		parent := n.ParentID
		if parent == "" {
			parent = "-"
		}
		label := n.Label
		if n.IsProject {
			label += " [project]"
		}
		t.add(n.ID, string(n.Kind), parent, fmt.Sprintf("%.0f", n.Size), target, angle, label)
	}
	t.write(w)

	fmt.Fprintln(w)
	brand.Fprintf(w, "%d nodes", len(g.Nodes))
	fmt.Fprintf(w, ", %d placed, %d links on a %gx%g canvas\n", res.Placed, len(g.Links), a.cfg.Canvas.Width, a.cfg.Canvas.Height)
	if len(res.Unplaced) > 0 {
		bad.Fprintf(w, "unplaced: %s\n", strings.Join(res.Unplaced, ", "))
	}
	if len(report.Unresolved) > 0 {
		warn.Fprintf(w, "unresolved (no topic): %s\n", strings.Join(report.Unresolved, ", "))
	}
	if len(report.Duplicates) > 0 {
		warn.Fprintf(w, "duplicates: %s\n", strings.Join(report.Duplicates, ", "))
	}
	if report.DroppedLinks > 0 {
		subtle.Fprintf(w, "dropped %d links\n", report.DroppedLinks)
	}
	return nil
}
