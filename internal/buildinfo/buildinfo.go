// Package buildinfo holds version metadata injected at link time:
//
//	go build -ldflags "-X github.com/rbxservers/rbxservers-bot/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build time.
	Date = "unknown"
)

// String formats the build metadata for the version command.
func String() string {
	return fmt.Sprintf("rbxservers %s (commit=%s, date=%s)", Version, Commit, Date)
}
