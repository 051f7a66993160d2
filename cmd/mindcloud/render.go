package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/mindcloud/pkg/mindcloud"
	"github.com/recera/mindcloud/pkg/render"
	"github.com/recera/mindcloud/pkg/waves"
)

type renderOptions struct {
	url   string
	focus string
	out   string
}

func newRenderCommand(a *app) *cobra.Command {
	var ro renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a settled mind cloud to SVG",
		Long: `Render one settled frame of the cloud to SVG: no entrance animation and,
with --focus, the camera already on that node. The payload comes from the
configured file, or from a running server with --url.`,
		Example: `  mindcloud render --payload data/mind-cloud.json -o cloud.svg
  mindcloud render --url http://localhost:8080 --focus writing --waves`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), ro, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ro.url, "url", "", "fetch the payload from this server instead of a file")
	flags.StringVar(&ro.focus, "focus", "", "node id to focus")
	flags.StringVarP(&ro.out, "output", "o", "", "output file (default stdout)")
	flags.Float64("width", 0, "canvas width in px")
	flags.Float64("height", 0, "canvas height in px")
	flags.Bool("waves", false, "draw the wave background")
	bind(flags, "width", "canvas.width")
	bind(flags, "height", "canvas.height")
	bind(flags, "waves", "canvas.waves")
	return cmd
}

func (a *app) render(ctx context.Context, ro renderOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w, h := a.cfg.Canvas.Width, a.cfg.Canvas.Height
	tax, err := taxonomy(a.cfg)
	if err != nil {
		return err
	}
	src, _ := source(a.cfg, ro.url)
	start := time.Now()
	p, err := src.FetchGraph(ctx)
	if err != nil {
		return err
	}

	opts := mindcloud.Options{Width: w, Height: h, Taxonomy: tax, Logger: a.log}
	if a.cfg.Canvas.Waves {
		opts.Waves = waves.New(waves.Options{})
	}
	svg := render.NewSVG(w, h)
	if err := mindcloud.Still(svg, p, opts, ro.focus); err != nil {
		return err
	}

	out := stdout
	if ro.out != "" && ro.out != "-" {
		f, err := os.Create(ro.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	n, err := svg.WriteTo(out)
	if err != nil {
		return err
	}
	if out != stdout {
		good.Fprintf(stderr, "✓ wrote %s ", ro.out)
		subtle.Fprintf(stderr, "(%s, %d nodes, %s)\n", formatSize(n), len(p.Nodes), time.Since(start).Round(time.Millisecond))
	}
	return nil
}
