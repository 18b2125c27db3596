// Command trestle is the headless companion to Trestle Studio: it
// evaluates structure scripts, audits snapshots, exports STL meshes, and
// re-runs a script whenever it changes on disk.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calder/trestle/pkg/config"
	"github.com/calder/trestle/pkg/observe"
)

var (
	cfgPath string
	verbose bool

	cfg config.Config
	log *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "trestle",
		Short:         "Ball-and-strut structure tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgPath != "" {
				cfg, err = config.Load(cfgPath)
				if err != nil {
					return err
				}
			} else {
				cfg = config.Default()
			}
			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			log = observe.NewLogger(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log solver passes")

	root.AddCommand(newEvalCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newExportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "trestle:", err)
		os.Exit(1)
	}
}
