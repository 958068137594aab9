package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/fsbuild/internal/config"
	"github.com/conneroisu/fsbuild/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Minify, then re-run whenever the web sources change",
	Long: `Run one minification, then watch the source tree and run it again after
every burst of changes. Runs never overlap. Stop with Ctrl+C.

Examples:
  fsbuild watch                  # watch ./data
  fsbuild watch --verbose        # list the changed files before each run
  fsbuild watch --engine syntax  # all minify flags apply`,
	PreRunE: bindMinifyFlags,
	RunE:    runWatch,
}

var watchVerbose bool

func init() {
	rootCmd.AddCommand(watchCmd)
	addMinifyFlags(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "list changed files")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if _, err := minifyOnce(ctx, cfg, out, logger); err != nil {
		return err
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.NoEditorTempFilter)

	// The watcher calls handlers from a single goroutine, so runs are
	// serialized.
	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Fprintf(out, "📁 File changes detected:\n")
			for _, event := range events {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(out, "📁 %d file(s) changed\n", len(events))
		}

		_, err := minifyOnce(ctx, cfg, out, logger)
		return err
	})

	if err := fileWatcher.AddRecursive(cfg.Minify.Source); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Minify.Source, err)
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(out, "👀 Watching %s for changes... (Press Ctrl+C to stop)\n", cfg.Minify.Source)

	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")

	return nil
}
