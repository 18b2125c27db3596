package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/calder/trestle/pkg/mesh"
	"github.com/calder/trestle/pkg/session"
	"github.com/calder/trestle/pkg/snapshot"
)

func newExportCmd() *cobra.Command {
	var outPath string
	var cells int

	cmd := &cobra.Command{
		Use:   "export <script-or-snapshot>",
		Short: "Tessellate a structure and write it as STL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var sess *session.Session
			if strings.HasSuffix(path, ".json") {
				f, err := os.Open(path)
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
				sess = session.New(asm, cfg, nil)
			} else {
				var err error
				sess, err = runScript(path)
				if err != nil {
					return err
				}
			}

			opts := mesh.DefaultOptions()
			if cells > 0 {
				opts.Cells = cells
			}
			if err := mesh.ExportSTL(outPath, sess, opts); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "structure.stl", "output STL path")
	cmd.Flags().IntVar(&cells, "cells", 0, "marching cubes resolution")
	return cmd
}
