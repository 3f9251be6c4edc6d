// Package version provides build-time version information.
package version

// Set at build time via -ldflags.
var (
	// Version is the semantic version of the release.
	Version = "0.1.0"

	// BuildTime is the UTC time the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit the binary was built from.
	GitCommit = "unknown"
)
