// ABOUTME: Watch command: re-runs an experiment file every time it changes
// ABOUTME: Uses fsnotify on the file's directory so editor rename-and-replace saves are seen

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// Wait for atomic writes to complete before re-reading
const watchDebounce = 100 * time.Millisecond

func newWatchCommand(_ *rootOptions) *cobra.Command {
	var batch batchOptions

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run experiments whenever the file changes",
		Long: `Run the experiments in a file, then keep watching it and run them again
after every save. Errors in the file are reported and watching continues.
Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchExperiments(cmd.Context(), cmd.OutOrStdout(), args[0], batch)
		},
	}

	batch.register(cmd)

	return cmd
}

func watchExperiments(ctx context.Context, out io.Writer, path string, opts batchOptions) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve experiment file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, which drops a watch on the file itself
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch experiment file: %w", err)
	}

	rerun := func() {
		if _, err := runBatch(ctx, out, target, opts); err != nil && ctx.Err() == nil {
			fmt.Fprintf(out, "Experiment run failed: %v\n", err)
		}
		if ctx.Err() == nil {
			fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)\n", path)
		}
	}

	rerun()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isExperimentChange(event, target) {
				continue
			}

			debugf("[WATCHER] %s", event)

			select {
			case <-time.After(watchDebounce):
			case <-ctx.Done():
				return nil
			}

			drainEvents(watcher)
			fmt.Fprintf(out, "\n%s changed, re-running\n", path)
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Log error but continue watching
			debugf("[WATCHER] Error: %v", err)
		}
	}
}

// isExperimentChange reports whether event rewrote the watched file
func isExperimentChange(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return name == target
}

// drainEvents discards events queued during the debounce
func drainEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-watcher.Events:
		default:
			return
		}
	}
}
