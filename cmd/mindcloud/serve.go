package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/mindcloud/internal/server"
	"github.com/recera/mindcloud/internal/store"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mind cloud API, snapshots and browser viewer",
		Long: `Serve the graph payload, post details, project view counts and SVG
snapshots over HTTP, together with the host page that mounts the wasm viewer.
Open pages reload when the payload or taxonomy file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "listen host")
	flags.Int("port", 0, "listen port")
	flags.String("store", "", "SQLite file for project view counts (\"\" disables)")
	flags.String("wasm", "", "compiled viewer served at /app.wasm")
	flags.Bool("watch", true, "reload when data files change")
	bind(flags, "host", "server.host")
	bind(flags, "port", "server.port")
	bind(flags, "store", "data.store_path")
	bind(flags, "wasm", "server.wasm_path")
	bind(flags, "watch", "server.watch")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []server.Option{server.WithLogger(a.log)}
	if path := a.cfg.Data.StorePath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		db, err := store.OpenDB(path)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, server.WithStore(db))
		a.log.Debug("view store open", zap.String("path", path))
	}

	srv, err := server.New(a.cfg, opts...)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
