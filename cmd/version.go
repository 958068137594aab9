package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/fsbuild/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the fsbuild version, git commit, build time, Go version and platform.

Examples:
  fsbuild version                # Show version
  fsbuild version --short        # One line only
  fsbuild version --format json  # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(version.GetBuildInfo())
	case "text":
		if versionShort {
			fmt.Fprintln(out, version.GetShortVersion())
			return nil
		}

		info := version.GetBuildInfo()
		fmt.Fprintf(out, "fsbuild %s", version.GetShortVersion())
		if info.Dirty {
			fmt.Fprint(out, " (dirty)")
		}
		fmt.Fprintln(out)

		if !info.BuildTime.IsZero() {
			fmt.Fprintf(out, "Built: %s\n", info.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
		}
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}
