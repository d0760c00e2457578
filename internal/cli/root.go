// Package cli implements the batchbench command line.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-batch/internal/config"
)

// rootOptions holds the state shared by every subcommand once the root pre-run has loaded it.
type rootOptions struct {
	configPath string
	logLevel   string
	debug      bool

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd creates the root Cobra command for the batchbench CLI.
// It loads the YAML configuration, sets up logging and wires the run and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "batchbench",
		Short:         "Headless stress harness for the instanced mesh batcher",
		Long:          "batchbench spawns many drifting instances over a few meshes and measures frustum-culled batch packing per tick.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		fmt.Sprintf("config file (default ./%s when present)", config.DefaultFile))
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newRunCmd(opts), newConfigCmd(opts))
	return cmd
}

// setup loads the configuration and builds the logger. Flags override file values.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.debug {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}

	o.cfg = cfg
	o.logger = config.InitLogger(cfg.LogLevel, cmd.ErrOrStderr())
	cmd.SetContext(o.logger.WithContext(cmd.Context()))

	o.logger.Debug().Str("command", cmd.Name()).Str("config", o.configPath).Msg("command started")
	return nil
}

const rootCmdExample = `  # Run the default stress scene (10000 instances, null renderer)
  batchbench run

  # Run 50000 instances on the headless WebGPU backend for 10 seconds of ticks
  batchbench run --objects 50000 --renderer wgpu --ticks 600

  # Compare against packing without culling
  batchbench run --no-culling

  # Write a default config file to edit
  batchbench config init`
