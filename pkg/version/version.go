// Package version provides the Reaper tool version.
package version

// Version is the Reaper tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/taradepan/reaper/pkg/version.Version=1.2.0"
var Version = "dev"
