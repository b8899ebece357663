// Package buildinfo holds version information stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/pondera/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/pondera/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/pondera/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the JSON form served by the dashboard.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build info.
func Get() Info { return Info{Version: Version, Commit: Commit, Date: Date} }

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
