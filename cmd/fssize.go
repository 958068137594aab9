package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/fsbuild/internal/config"
	"github.com/conneroisu/fsbuild/internal/fssize"
)

var fsSizeDryRun bool

var fsSizeCmd = &cobra.Command{
	Use:   "fs-size [file]",
	Short: "Force the LittleFS image size in a build environment file",
	Long: `Set FS_SIZE, and BOARD_CONFIG.build.filesystem_size when a board configuration
is present, to the fixed LittleFS partition size.

The file is JSON or YAML, chosen by extension. It defaults to
filesystem.env_file (fsbuild-env.json) and is created when missing.

Examples:
  fsbuild fs-size                      # update fsbuild-env.json
  fsbuild fs-size .pio/env.yaml        # update a YAML dump
  fsbuild fs-size --dry-run env.json   # print the result instead of writing it`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFSSize,
}

func init() {
	rootCmd.AddCommand(fsSizeCmd)

	fsSizeCmd.Flags().BoolVar(&fsSizeDryRun, "dry-run", false, "print the updated document instead of writing it")
}

func runFSSize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	path := cfg.Filesystem.EnvFile
	if len(args) == 1 {
		path = args[0]
	}

	env, format, created, err := fssize.Load(path)
	if err != nil {
		return err
	}
	if created {
		logger.Info(ctx, "Build environment file not found, starting empty", "path", path)
	}

	fssize.Inject(env)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Forcing LittleFS size to %d bytes (%dKB)\n", fssize.FilesystemSize, fssize.FilesystemSize/1024)

	if fsSizeDryRun {
		data, err := fssize.Encode(env, format)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if err := fssize.Save(path, env, format); err != nil {
		return err
	}
	_, board := env.BoardFilesystemSize()
	logger.Debug(ctx, "Build environment updated", "path", path, "format", string(format), "board", board)
	return nil
}
