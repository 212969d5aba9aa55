// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

import _ "embed"

const (
	// Readalong names the binary, the config file and the environment prefix.
	Readalong = "readalong"

	// Version is the current application semantic version string.
	Version = "0.1.0"
)

// Build metadata, set through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// AsciiArtLogo is the banner of the root command help.
//
//go:embed ascii.txt
var AsciiArtLogo string

// runtime.GOOS values with platform specific behaviour.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
