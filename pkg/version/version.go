// Package version exposes build-time metadata injected via -ldflags.
package version

var (
	version  = "dev"
	revision = "unknown"
	branch   = "unknown"
	date     = "unknown"
)

// Version returns the semantic version this binary was built from.
func Version() string { return version }

// Revision returns the VCS commit hash this binary was built from.
func Revision() string { return revision }

// Branch returns the VCS branch this binary was built from.
func Branch() string { return branch }

// Date returns the build timestamp.
func Date() string { return date }
