// Package version carries build information injected at link time.
package version

import "fmt"

var (
	// Version is the semantic version, set via -ldflags at build time.
	Version = "0.11.0-dev"

	// Branch and Commit identify the git state of the build.
	Branch = "not-within-git-repo"
	Commit = "unknown"

	// Dirty is non-empty when the build came from modified sources.
	Dirty = ""

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the short version string shown by --version.
func String() string {
	return Version
}

// IsReleaseBuild reports whether this build came from an unmodified
// release branch. Non-release builds print extra git details.
func IsReleaseBuild() bool {
	return Branch == "master" || Branch == "not-within-git-repo"
}

// Full returns the multi-line version description shown by --fullversion.
func Full() string {
	s := Version
	s += fmt.Sprintf("\n  - git-branch: %s", Branch)
	s += fmt.Sprintf("\n  - git-hash: %s", Commit)
	if Dirty != "" {
		s += fmt.Sprintf("\n  - dirty-flag: %s", Dirty)
	}
	return s
}
