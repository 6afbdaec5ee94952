// Package settings provides build metadata, runtime configuration, and
// context helpers used across the tabx CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tabx"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// InputSettings describes where the host document for one run comes from:
// a file path, standard input, and for workbook formats the sheet to read.
type InputSettings struct {
	FromStdin bool
	Path      string
	Sheet     string
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application:
// logging, input source, output formatting, and error handling behavior.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns a Run with the defaults for command-line use: info
// logging, input from the positional file argument, and exit on error.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
