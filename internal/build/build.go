// Package build provides build-time information for the forge binary.
package build

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Overridable via ldflags:
// -X github.com/tacogips/forge/internal/build.version=x.y.z
var (
	version   string
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Version returns the application version.
// Priority: ldflags > embedded VERSION file
func Version() string {
	if version != "" {
		return version
	}
	return strings.TrimSpace(embeddedVersion)
}

// GitCommit returns the commit the binary was built from.
func GitCommit() string { return gitCommit }

// BuildDate returns the build timestamp.
func BuildDate() string { return buildDate }

// Set overrides the build information, typically from main.
func Set(v, commit, date string) {
	if v != "" && v != "dev" {
		version = v
	}
	if commit != "" {
		gitCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

// String renders a one-line version banner.
func String() string {
	return fmt.Sprintf("forge %s (commit %s, built %s, %s/%s)",
		Version(), GitCommit(), BuildDate(), runtime.GOOS, runtime.GOARCH)
}
