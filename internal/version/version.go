// Package version reports build metadata stamped in with -ldflags, falling
// back to the VCS settings the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	Dirty     bool      `json:"dirty"`
}

// Set at build time:
//
//	go build -ldflags "-X github.com/conneroisu/fsbuild/internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetBuildInfo returns comprehensive build information
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   GetVersion(),
		GitCommit: GetGitCommit(),
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Dirty:     vcsSetting("vcs.modified") == "true",
	}
}

// GetVersion returns the stamped version, the module version, or a
// dev-<commit> pseudo version, in that order.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	if rev := vcsSetting("vcs.revision"); len(rev) >= 7 {
		return "dev-" + rev[:7]
	}
	return "dev"
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return GitCommit
	}
	if rev := vcsSetting("vcs.revision"); rev != "" {
		return rev
	}
	return "unknown"
}

// GetShortVersion returns a one-line version for display.
func GetShortVersion() string {
	version := GetVersion()
	commit := GetGitCommit()

	if commit == "unknown" || len(commit) < 7 || strings.HasPrefix(version, "dev-") {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, commit[:7])
}

// IsRelease reports whether the binary carries a real version.
func IsRelease() bool {
	v := GetVersion()
	return v != "dev" && !strings.HasPrefix(v, "dev-")
}

func vcsSetting(key string) string {
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// parseBuildTime accepts RFC 3339 with or without a zone and returns the
// zero time otherwise.
func parseBuildTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
