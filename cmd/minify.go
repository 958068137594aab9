package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/fsbuild/internal/assets"
	"github.com/conneroisu/fsbuild/internal/config"
	"github.com/conneroisu/fsbuild/internal/logging"
	"github.com/conneroisu/fsbuild/internal/minify"
)

var minifyCmd = &cobra.Command{
	Use:     "minify",
	Aliases: []string{"m"},
	Short:   "Minify the web sources into the build tree",
	Long: `Recreate the build tree from the web sources. HTML, CSS and JavaScript are
minified, everything else is copied unchanged, and a size report is printed.

The build tree is deleted at the start of every run.

Examples:
  fsbuild minify                          # ./data into ./data-build
  fsbuild minify --engine syntax --gzip   # parser-based minifier, .gz siblings
  fsbuild minify --threshold 0            # report every file that shrank`,
	PreRunE: bindMinifyFlags,
	RunE:    runMinify,
}

func init() {
	rootCmd.AddCommand(minifyCmd)
	addMinifyFlags(minifyCmd)
}

// addMinifyFlags registers the flags shared by minify and watch.
func addMinifyFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", config.DefaultSource, "web source directory")
	cmd.Flags().StringP("destination", "d", config.DefaultDestination, "build output directory (deleted on every run)")
	cmd.Flags().StringP("engine", "e", config.DefaultEngine, "minification engine ("+strings.Join(minify.Engines(), ", ")+")")
	cmd.Flags().Bool("gzip", false, "also write a .gz sibling for every output file")
	cmd.Flags().Float64("threshold", config.DefaultReportThreshold, "report files whose size dropped by more than this percentage")
}

var minifyFlagKeys = map[string]string{
	"source":      "minify.source",
	"destination": "minify.destination",
	"engine":      "minify.engine",
	"gzip":        "minify.gzip",
	"threshold":   "minify.report_threshold",
}

// bindMinifyFlags binds the running command's flags, since minify and
// watch each own a copy of them.
func bindMinifyFlags(cmd *cobra.Command, args []string) error {
	for name, key := range minifyFlagKeys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func runMinify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	_, err = minifyOnce(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
	return err
}

// newAssetMinifier builds the asset runner described by cfg.
func newAssetMinifier(cfg *config.Config, out io.Writer, logger logging.Logger) (*assets.Minifier, error) {
	engine, err := minify.NewEngine(cfg.Minify.Engine)
	if err != nil {
		return nil, err
	}

	return assets.New(assets.Options{
		Source:          cfg.Minify.Source,
		Destination:     cfg.Minify.Destination,
		Engine:          engine,
		Gzip:            cfg.Minify.Gzip,
		ReportThreshold: cfg.Minify.ReportThreshold,
		Out:             out,
		Logger:          logger,
	}), nil
}

func minifyOnce(ctx context.Context, cfg *config.Config, out io.Writer, logger logging.Logger) (*assets.Report, error) {
	m, err := newAssetMinifier(cfg, out, logger)
	if err != nil {
		return nil, err
	}

	op := logging.StartOperation(logger, "minify")
	report, err := m.Run(ctx)
	if err != nil {
		op.EndWithError(ctx, err)
		return report, fmt.Errorf("minification failed: %w", err)
	}
	op.End(ctx)

	logger.Debug(ctx, "Minification finished",
		"files", report.Totals.Files,
		"copied", report.Totals.Copied,
		"engine", cfg.Minify.Engine,
	)
	return report, nil
}
