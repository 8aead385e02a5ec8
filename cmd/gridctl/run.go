package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"terraingrid/placement"
)

type runOptions struct {
	seed        uint64
	parallel    int
	snapshotDir string
	showGrid    bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>...",
		Short: "Apply plans and report placements",
		Long: `The run command applies every plan on its own level tree, in parallel
when the arena has room, and prints placements and per-level stats.

Example:
  gridctl run valley.yaml
  gridctl run a.yaml b.yaml --parallel 2 --snapshot-dir out/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlans(cmd, args, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "override the seed of every plan")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "plans run at once (0 derives it from the arena)")
	cmd.Flags().StringVar(&opts.snapshotDir, "snapshot-dir", "", "write a root snapshot per plan into this directory")
	cmd.Flags().BoolVar(&opts.showGrid, "grid", false, "draw each root grid")

	return cmd
}

func (a *app) loadPlans(paths []string, seed uint64) ([]*placement.Plan, error) {
	if seed == 0 {
		seed = a.cfg.Run.Seed
	}
	plans := make([]*placement.Plan, 0, len(paths))
	for _, path := range paths {
		p, err := placement.LoadPlan(path)
		if err != nil {
			return nil, err
		}
		if seed != 0 {
			p.Seed = seed
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (a *app) runPlans(cmd *cobra.Command, paths []string, opts *runOptions) error {
	plans, err := a.loadPlans(paths, opts.seed)
	if err != nil {
		return err
	}

	parallel := opts.parallel
	if parallel == 0 {
		parallel = a.cfg.Run.Parallel
	}
	results, err := placement.RunAll(cmd.Context(), plans, a.arena, a.logger, parallel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, res := range results {
		fmt.Fprintf(out, "== %s (seed %d)\n", res.Plan, plans[i].Seed)
		fmt.Fprintln(out, placementsTable(res.Placements))
		fmt.Fprintln(out, statsTable(res.Stats))
		if opts.showGrid {
			if err := renderGrid(out, res.Grid); err != nil {
				return err
			}
		}
		if opts.snapshotDir != "" {
			path, err := writeSnapshot(opts.snapshotDir, paths[i], res.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "snapshot: %s\n", path)
		}
	}
	return nil
}

func writeSnapshot(dir, planPath string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(planPath), filepath.Ext(planPath))
	path := filepath.Join(dir, base+".sgrd")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return path, nil
}
