// Package version holds the application version, set at build time via
// -ldflags when releasing.
package version

// Version is the application version string.
var Version = "dev"
