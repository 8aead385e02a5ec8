// Package main provides the entry point for the gridctl CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"terraingrid/config"
	"terraingrid/symgrid"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	arena  *symgrid.Arena
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gridctl",
		Short: "Generate and inspect terrain reservation grids",
		Long: `gridctl runs terrain feature plans against symbolic reservation grids.

Commands:
  run       Apply one or more plans and report placements
  print     Apply a plan and draw the root grid
  inspect   Decode a grid snapshot written by run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./gridctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newPrintCmd(a))
	rootCmd.AddCommand(newInspectCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if a.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	a.cfg = cfg
	a.logger = cfg.Logging.NewLogger(cmd.ErrOrStderr())
	a.arena = cfg.Arena.NewArena(a.logger)
	a.logger.Debug("arena ready", "slots", a.arena.Capacity(), "max_dim", a.arena.MaxDim(), "budget_bytes", a.arena.Budget())
	return nil
}
