// Package cmd provides the command-line interface for fsbuild.
//
// Configuration System:
//
//	Settings come from several sources, highest priority first:
//	1. Command-line flags (--source, --engine, etc.)
//	2. FSBUILD_<SECTION>_<KEY> environment variables (FSBUILD_MINIFY_SOURCE)
//	3. The configuration file: --config, else FSBUILD_CONFIG_FILE, else
//	   .fsbuild.yml in the working directory
//	4. Built-in defaults (./data into ./data-build)
//
// Every command works with no configuration at all.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/fsbuild/internal/config"
	"github.com/conneroisu/fsbuild/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fsbuild",
	Short: "Prepare web assets for a LittleFS firmware image",
	Long: `fsbuild prepares the web interface of an embedded device for packing into
its LittleFS partition.

Commands:
  fsbuild minify     Minify ./data into ./data-build
  fsbuild watch      Minify, then re-run on every change
  fsbuild fs-size    Force the LittleFS size in a build environment file
  fsbuild version    Show version information`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bindRootFlags,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .fsbuild.yml, can also use FSBUILD_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// bindRootFlags binds the persistent flags on every invocation so a
// viper.Reset between runs does not lose them.
func bindRootFlags(cmd *cobra.Command, args []string) error {
	for _, name := range []string{"log-level", "log-format"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// initConfig wires the configuration sources described in the package
// documentation. A missing config file is not an error; an unreadable or
// malformed one that was asked for explicitly is reported on stderr and
// the defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FSBUILD_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fsbuild")
	}

	viper.SetEnvPrefix("FSBUILD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := config.BindEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && (cfgFile != "" || os.Getenv("FSBUILD_CONFIG_FILE") != "") {
		fmt.Fprintln(os.Stderr, "Warning: failed to read config file:", err)
	}
}

// newLogger builds the command logger from --log-level and --log-format.
// Logs go to the command's error stream.
func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	format := viper.GetString("log-format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unsupported log format: %s (supported: text, json)", format)
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    cmd.ErrOrStderr(),
		Component: cmd.Name(),
	}), nil
}
