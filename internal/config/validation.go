package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/conneroisu/fsbuild/internal/assets"
	fserrors "github.com/conneroisu/fsbuild/internal/errors"
	"github.com/conneroisu/fsbuild/internal/minify"
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateMinifyConfig(&config.Minify); err != nil {
		return fmt.Errorf("minify config: %w", err)
	}

	if err := validatePath(config.Filesystem.EnvFile); err != nil {
		return fmt.Errorf("filesystem config: invalid env_file '%s': %w", config.Filesystem.EnvFile, err)
	}

	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch config: %w", fserrors.NewValidationError(fserrors.ErrCodeConfigInvalid,
			fmt.Sprintf("debounce must not be negative, got %s", config.Watch.Debounce)))
	}

	return nil
}

// validateMinifyConfig checks the source and destination roots. The
// destination is wiped at the start of every run, so it must never be the
// source tree or contain it, and it must not sit inside the source tree
// where the walk would pick up its own output.
func validateMinifyConfig(config *MinifyConfig) error {
	if err := validatePath(config.Source); err != nil {
		return fmt.Errorf("invalid source '%s': %w", config.Source, err)
	}
	if err := validatePath(config.Destination); err != nil {
		return fmt.Errorf("invalid destination '%s': %w", config.Destination, err)
	}

	overlap, err := assets.Overlap(config.Source, config.Destination)
	if err != nil {
		return fserrors.NewValidationError(fserrors.ErrCodeInvalidPath,
			fmt.Sprintf("cannot resolve source '%s' or destination '%s': %v", config.Source, config.Destination, err))
	}
	if overlap {
		return fserrors.NewValidationError(fserrors.ErrCodeInvalidPath,
			fmt.Sprintf("source '%s' and destination '%s' must not overlap", config.Source, config.Destination))
	}

	if !slices.Contains(minify.Engines(), config.Engine) {
		return fserrors.NewConfigError(fserrors.ErrCodeUnknownEngine,
			fmt.Sprintf("unknown engine '%s' (supported: %s)", config.Engine, strings.Join(minify.Engines(), ", ")))
	}

	if config.ReportThreshold < 0 || config.ReportThreshold >= 100 {
		return fserrors.NewValidationError(fserrors.ErrCodeConfigInvalid,
			fmt.Sprintf("report_threshold must be in [0, 100), got %g", config.ReportThreshold))
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fserrors.ErrInvalidPath("empty path")
	}

	cleanPath := filepath.Clean(path)

	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fserrors.ErrPathTraversal(path)
		}
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'", "\x00"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fserrors.ErrInvalidPath(fmt.Sprintf("%s (contains %q)", path, char))
		}
	}

	return nil
}
