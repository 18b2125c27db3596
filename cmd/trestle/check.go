package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/calder/trestle/pkg/snapshot"
	"github.com/calder/trestle/pkg/solver"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <snapshot>",
		Short: "Restore a snapshot and re-check every bound strut distance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open snapshot")
			}
			defer f.Close()

			st, err := snapshot.Read(f)
			if err != nil {
				return err
			}
			asm, err := st.Restore(cfg.ClassLength)
			if err != nil {
				return err
			}

			// Snapshots store solved positions, so a clean file audits
			// clean at the degraded bound; anything worse means the file
			// was edited by hand or written by different tunables.
			tol := cfg.Solver.PositionTolerance * cfg.Solver.DegradedMultiplier
			violations := solver.Audit(asm, cfg.NodeRadius, tol)
			if len(violations) == 0 {
				fmt.Printf("%s: ok (%d balls, %d shafts)\n", args[0], asm.NodeCount(), asm.LinkCount())
				return nil
			}

			for _, v := range violations {
				fmt.Printf("shaft #%d: distance %.4f, want %.4f (error %.4f)\n",
					int(v.Link), v.Got, v.Want, v.Error())
			}
			return errors.Newf("%d strut(s) out of tolerance", len(violations))
		},
	}
}
