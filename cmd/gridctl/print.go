package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"terraingrid/placement"
	"terraingrid/symgrid"
)

func newPrintCmd(a *app) *cobra.Command {
	var (
		seed uint64
		meta bool
	)

	cmd := &cobra.Command{
		Use:   "print <plan.yaml>",
		Short: "Apply a plan and draw the root grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := a.loadPlans(args, seed)
			if err != nil {
				return err
			}
			p := plans[0]

			tree, err := placement.Build(p, a.arena, a.logger)
			if err != nil {
				return err
			}
			defer tree.Close()

			if _, err := tree.Apply(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			root := tree.Root()
			if meta {
				if err := printMeta(out, tree, p); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "%s %dx%d seed %d\n", p.Name, root.Rows(), root.Cols(), p.Seed)
			return renderGrid(out, root.Occupancy(symgrid.Horizontal))
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "override the plan seed")
	cmd.Flags().BoolVar(&meta, "meta", false, "print level metadata before the grid")

	return cmd
}

// printMeta prints every full level with its parent chain.
func printMeta(w io.Writer, tree *placement.Tree, p *placement.Plan) error {
	names := []string{p.Root.Name}
	for _, l := range p.Levels {
		names = append(names, l.Name)
	}
	for _, name := range names {
		r, _ := tree.Level(name)
		l, ok := r.(*symgrid.Level)
		if !ok {
			continue
		}
		if err := l.PrintMetaData(w); err != nil {
			return err
		}
	}
	return nil
}
