package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile  string
	logLevel string
	verbose  bool
	steps    int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "htmsim",
		Short: "Drive an HTM region with a temporal pooler",
		Long: `htmsim wires a sensor layer to a region of columns, feeds it an encoded
repeating sequence and reports how well the temporal pooler predicts it.

Configuration:
  1. built in defaults (htmsim config show)
  2. --config flag (yaml file)
  3. HTMSIM_ environment variables, e.g. HTMSIM_REGION_CELLS_PER_COLUMN`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Learn the configured sequence and print prediction scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if opts.steps > 0 {
				cfg.Steps = opts.steps
			}
			return runSimulation(cmd.OutOrStdout(), cfg, opts.verbose)
		},
	}
	runCmd.Flags().IntVar(&opts.steps, "steps", 0, "number of timesteps (overrides config)")
	runCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print the temporal pooler state after the last step")

	geometryCmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the receptive field geometry of the configured layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printGeometry(cmd.OutOrStdout(), cfg)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(geometryCmd)
	rootCmd.AddCommand(configCmd)

	return rootCmd
}

// load reads the configuration and sets up the global logger before any
// component captures it
func (o *options) load(logOut io.Writer) (*Config, error) {
	cfg, err := LoadConfig(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: logOut}).With().Timestamp().Logger()

	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
