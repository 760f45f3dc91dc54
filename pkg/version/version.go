// Package version reports build information injected at link time:
//
//	go build -ldflags "-X github.com/rshade/scrollviz/pkg/version.version=v1.2.3"
package version

import "fmt"

//nolint:gochecknoglobals // Set via -ldflags at build time.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// String returns a one-line summary for --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildDate)
}
