package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calder/trestle/pkg/engine"
	"github.com/calder/trestle/pkg/observe"
	"github.com/calder/trestle/pkg/session"
	"github.com/calder/trestle/pkg/snapshot"
)

func newEvalCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a structure script and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := runScript(args[0])
			if err != nil {
				return err
			}

			asm := sess.Assembly()
			fmt.Printf("%s: %d balls, %d shafts\n", args[0], asm.NodeCount(), asm.LinkCount())

			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.Wrap(err, "create snapshot")
				}
				defer f.Close()
				if err := snapshot.Write(f, snapshot.Capture(asm)); err != nil {
					return err
				}
				fmt.Printf("snapshot written to %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write a snapshot of the result")
	return cmd
}

// runScript evaluates one script file into a session, folding eval errors
// into a single returned error.
func runScript(path string) (*session.Session, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}

	eng := engine.NewEngine(cfg, observe.NewZap(log))
	sess, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Error("script error",
				zap.Int("line", e.Line),
				zap.String("message", e.Message))
		}
		return nil, errors.Newf("%d script error(s)", len(evalErrs))
	}
	return sess, nil
}
