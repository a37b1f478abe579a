// Package buildinfo holds the version string reported by --version.
package buildinfo

// Version is overridden at release build time via -ldflags.
var Version = "dev"

// String returns the string printed for --version.
func String() string {
	return "myshell " + Version
}
