package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"terraingrid/symgrid"
)

func newInspectCmd(a *app) *cobra.Command {
	var segments bool

	cmd := &cobra.Command{
		Use:   "inspect <snapshot.sgrd>",
		Short: "Decode a grid snapshot",
		Long: `The inspect command decodes a snapshot written by "gridctl run --snapshot-dir"
and draws the grid it describes.

Example:
  gridctl inspect out/valley.sgrd --segments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open snapshot: %w", err)
			}
			defer f.Close()

			snap, err := symgrid.ReadSnapshot(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if maxDim := a.arena.MaxDim(); snap.Rows > maxDim || snap.Cols > maxDim {
				return fmt.Errorf("%s: %w: %dx%d exceeds max dimension %d", args[0], symgrid.ErrBadSnapshot, snap.Rows, snap.Cols, maxDim)
			}
			a.logger.Debug("snapshot decoded", "path", args[0], "rows", snap.Rows, "cols", snap.Cols, "runs", len(snap.Free))

			out := cmd.OutOrStdout()
			free := 0
			for _, s := range snap.Free {
				free += s.Length
			}
			fmt.Fprintf(out, "%dx%d free=%d reserved=%d\n", snap.Rows, snap.Cols, free, snap.Rows*snap.Cols-free)
			if segments {
				fmt.Fprintln(out, segmentsTable(snap.Free))
			}
			return renderGrid(out, snap.Occupancy())
		},
	}

	cmd.Flags().BoolVar(&segments, "segments", false, "list the free runs")

	return cmd
}
