// Package version provides version information for pipeshell.
// The version is a semantic version; commit and build date are injected at build time:
//
//	go build -ldflags "-X pipeshell/internal/version.Version=0.3.1 -X pipeshell/internal/version.GitCommit=$(git rev-parse HEAD)"
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the application
	Version = "0.1.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// Info represents comprehensive version information
type Info struct {
	Version   string          `json:"version" yaml:"version"`
	GitCommit string          `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string          `json:"buildDate" yaml:"buildDate"`
	GoVersion string          `json:"goVersion" yaml:"goVersion"`
	Platform  string          `json:"platform" yaml:"platform"`
	SemVer    *semver.Version `json:"-" yaml:"-"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetBaseVersion returns major.minor.patch without prerelease or build metadata.
func GetBaseVersion() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a one-line version string such as
// "pipeshell v0.1.0, commit 1a2b3c4, built 2025-01-02".
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("pipeshell v%s (invalid version)", Version)
	}

	parts := []string{fmt.Sprintf("pipeshell v%s", info.Version)}
	if known(info.GitCommit) {
		commit := info.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		parts = append(parts, "commit "+commit)
	}
	if known(info.BuildDate) {
		parts = append(parts, "built "+info.BuildDate)
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns detailed version information for debugging
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("pipeshell v%s (error: %v)", Version, err)
	}

	lines := []string{
		fmt.Sprintf("pipeshell v%s", info.Version),
		fmt.Sprintf("Git Commit: %s", info.GitCommit),
		fmt.Sprintf("Build Date: %s", info.BuildDate),
	}
	if metadata := info.SemVer.Metadata(); metadata != "" {
		lines = append(lines, fmt.Sprintf("Build Metadata: %s", metadata))
	}
	lines = append(lines,
		fmt.Sprintf("Go Version: %s", info.GoVersion),
		fmt.Sprintf("Platform: %s", info.Platform))
	return strings.Join(lines, "\n")
}

// ValidateVersion validates that the current version is a valid semantic version
func ValidateVersion() error {
	if _, err := semver.NewVersion(Version); err != nil {
		return fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	return nil
}

// IsPrerelease returns true if the current version is a prerelease
func IsPrerelease() bool {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false
	}
	return sv.Prerelease() != ""
}

// IsDevelopment returns true if this appears to be a development build
func IsDevelopment() bool {
	return !known(GitCommit) || !known(BuildDate)
}

// CompareVersions compares two version strings and returns:
// -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) (int, error) {
	sv1, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version v1 '%s': %w", v1, err)
	}
	sv2, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version v2 '%s': %w", v2, err)
	}
	return sv1.Compare(sv2), nil
}

// SetBuildInfo sets build information (used for testing)
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}

func known(value string) bool {
	return value != "" && value != "unknown"
}
