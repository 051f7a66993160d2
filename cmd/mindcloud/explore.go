package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/mindcloud/internal/tui"
	"github.com/recera/mindcloud/pkg/loader"
	"github.com/recera/mindcloud/pkg/mindcloud"
	"github.com/recera/mindcloud/pkg/render"
)

func newExploreCommand(a *app) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the mind cloud in the terminal",
		Long: `Open the cloud full-screen in the terminal. Tab cycles topics, enter steps
into the focused node, esc backs out, arrows pan and +/- zoom. The mouse
clicks, drags and scrolls like in the browser. With --url, opening a project
counts a view on that server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.explore(cmd.Context(), url)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "fetch the payload from this server instead of a file")
	return cmd
}

func (a *app) explore(ctx context.Context, url string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tax, err := taxonomy(a.cfg)
	if err != nil {
		return err
	}
	src, client := source(a.cfg, url, loader.WithLogger(a.log))

	opts := mindcloud.Options{
		// Sized properly by the first WindowSizeMsg.
		Width:    80 * render.CellWidth,
		Height:   24 * render.CellHeight,
		Taxonomy: tax,
		Logger:   a.log,
		FPS:      30,
	}
	if client != nil {
		opts.Tracker = client
		defer client.Wait()
	}
	c := mindcloud.New(opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := c.Load(ctx, src); err != nil {
			a.log.Debug("load", zap.Error(err))
		}
	}()
	return tui.Run(c)
}
