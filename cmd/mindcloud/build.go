package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBuildCommand(a *app) *cobra.Command {
	var pkg string
	var dev bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the browser viewer to WebAssembly",
		Long: `Compile the wasm viewer with GOOS=js GOARCH=wasm into the path that serve
publishes at /app.wasm, then report its raw and gzipped size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.build(pkg, dev, cmd.ErrOrStderr())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&pkg, "pkg", "./cmd/mindcloud-wasm", "viewer main package")
	flags.BoolVar(&dev, "dev", false, "keep symbols and DWARF for debugging")
	flags.StringP("output", "o", "", "output file")
	bind(flags, "output", "server.wasm_path")
	return cmd
}

func (a *app) build(pkg string, dev bool, w io.Writer) error {
	out := a.cfg.Server.WasmPath
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	brand.Fprintln(w, "Building mind cloud viewer...")
	args := []string{"build", "-o", out}
	if !dev {
		args = append(args, "-trimpath", "-ldflags=-s -w")
	}
	args = append(args, pkg)

	start := time.Now()
	gobuild := exec.Command("go", args...)
	gobuild.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	gobuild.Stdout = w
	gobuild.Stderr = w
	if err := gobuild.Run(); err != nil {
		return fmt.Errorf("wasm build failed: %w", err)
	}
	a.log.Debug("wasm built", zap.String("pkg", pkg), zap.Duration("took", time.Since(start)))

	reportBuildSize(w, out)
	return nil
}

func reportBuildSize(w io.Writer, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "  WASM:        %s\n", formatSize(info.Size()))
	fmt.Fprintf(w, "  WASM (gzip): %s\n", formatSize(gzippedSize(path)))
	good.Fprintf(w, "✓ Build output: %s\n", path)
}

func gzippedSize(path string) int64 {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write(content)
	gz.Close()
	return int64(buf.Len())
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
