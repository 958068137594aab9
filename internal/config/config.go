// Package config provides configuration management for fsbuild using Viper
// for loading from files, environment variables, and command-line flags.
//
// Every setting has a default matching the fixed layout of the firmware
// project (web sources in ./data, packed output in ./data-build), so the
// commands work with no configuration at all. A .fsbuild.yml file or
// FSBUILD_<SECTION>_<KEY> environment variables override individual keys.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when a key is not set.
const (
	DefaultSource          = "data"
	DefaultDestination     = "data-build"
	DefaultEngine          = "lexical"
	DefaultReportThreshold = 1.0
	DefaultEnvFile         = "fsbuild-env.json"
	DefaultDebounce        = 300 * time.Millisecond
)

type Config struct {
	Minify     MinifyConfig     `yaml:"minify" mapstructure:"minify"`
	Filesystem FilesystemConfig `yaml:"filesystem" mapstructure:"filesystem"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
}

type MinifyConfig struct {
	Source      string `yaml:"source" mapstructure:"source"`
	Destination string `yaml:"destination" mapstructure:"destination"`
	Engine      string `yaml:"engine" mapstructure:"engine"`
	Gzip        bool   `yaml:"gzip" mapstructure:"gzip"`
	// ReportThreshold is the percentage reduction a file must exceed
	// before it gets its own report line.
	ReportThreshold float64 `yaml:"report_threshold" mapstructure:"report_threshold"`
}

type FilesystemConfig struct {
	EnvFile string `yaml:"env_file" mapstructure:"env_file"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Minify: MinifyConfig{
			Source:          DefaultSource,
			Destination:     DefaultDestination,
			Engine:          DefaultEngine,
			ReportThreshold: DefaultReportThreshold,
		},
		Filesystem: FilesystemConfig{
			EnvFile: DefaultEnvFile,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Keys lists every configuration key, in viper's dotted form.
var Keys = []string{
	"minify.source",
	"minify.destination",
	"minify.engine",
	"minify.gzip",
	"minify.report_threshold",
	"filesystem.env_file",
	"watch.debounce",
}

// BindEnv registers every key with viper so FSBUILD_<SECTION>_<KEY>
// variables reach Unmarshal. AutomaticEnv alone only serves keys viper
// already knows about.
func BindEnv() error {
	for _, key := range Keys {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the configuration from viper, fills in defaults and validates
// the result.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply default values for MinifyConfig if not set
	if config.Minify.Source == "" {
		config.Minify.Source = DefaultSource
	}
	if config.Minify.Destination == "" {
		config.Minify.Destination = DefaultDestination
	}
	if config.Minify.Engine == "" {
		config.Minify.Engine = DefaultEngine
	}
	// An explicit 0 means "report every file that shrank at all"
	if !viper.IsSet("minify.report_threshold") {
		config.Minify.ReportThreshold = DefaultReportThreshold
	}

	if config.Filesystem.EnvFile == "" {
		config.Filesystem.EnvFile = DefaultEnvFile
	}

	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = DefaultDebounce
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
