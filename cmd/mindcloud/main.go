package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recera/mindcloud/internal/config"
	"github.com/recera/mindcloud/internal/observability"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// app is the state shared by every command once the root has run.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	log     *zap.Logger
	restore func()
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root, a := newRootCommand()
	defer a.close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{v: viper.New()}
	var cfgFile, envFile string

	rootCmd := &cobra.Command{
		Use:   "mindcloud",
		Short: "Mind cloud - an explorable graph of posts and projects",
		Long: `mindcloud lays out blog posts and projects as a radial node-link graph:
a center, topics, sub-topics and leaves. It serves the interactive browser
viewer, renders SVG snapshots and explores the cloud in the terminal.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && (cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist)) {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
			if err := bindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			if err := config.Setup(a.v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = observability.New(cfg.Logger)
			a.restore = observability.Install(a.log)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./mindcloud.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	flags.String("payload", "", "graph payload JSON file")
	flags.String("taxonomy", "", "taxonomy YAML file")
	bind(flags, "log-level", "logger.level")
	bind(flags, "log-format", "logger.format")
	bind(flags, "payload", "data.payload_file")
	bind(flags, "taxonomy", "data.taxonomy_file")

	rootCmd.AddCommand(
		newServeCommand(a),
		newRenderCommand(a),
		newLayoutCommand(a),
		newExploreCommand(a),
		newBuildCommand(a),
	)
	return rootCmd, a
}

func (a *app) close() {
	if a.log != nil {
		observability.Sync(a.log)
	}
	if a.restore != nil {
		a.restore()
		a.restore = nil
	}
}
