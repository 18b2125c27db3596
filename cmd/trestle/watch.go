package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// debounceWindow coalesces the write bursts editors emit on save.
const debounceWindow = 150 * time.Millisecond

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <script>",
		Short: "Re-evaluate a structure script whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return errors.Wrap(err, "create watcher")
			}
			defer watcher.Close()

			// Watch the directory, not the file: editors that save via
			// rename would otherwise drop the watch.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return errors.Wrap(err, "watch directory")
			}

			evaluate := func() {
				sess, err := runScript(path)
				if err != nil {
					log.Warn("evaluation failed", zap.Error(err))
					return
				}
				asm := sess.Assembly()
				log.Info("evaluated",
					zap.String("script", path),
					zap.Int("balls", asm.NodeCount()),
					zap.Int("shafts", asm.LinkCount()))
			}
			evaluate()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			var timer *time.Timer
			pending := make(chan struct{}, 1)
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != filepath.Clean(path) {
						continue
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
						continue
					}
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounceWindow, func() {
						select {
						case pending <- struct{}{}:
						default:
						}
					})

				case <-pending:
					evaluate()

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Warn("watch error", zap.Error(err))

				case <-sig:
					return nil
				}
			}
		},
	}
}
