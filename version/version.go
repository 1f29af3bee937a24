// Package version carries the build identity stamped into the binary and
// exposes it to the CLI, the health surface, the build-info metric, and the
// version envelope pushed to every WebSocket client.
package version

import (
	"fmt"
	"runtime"
)

// Stamped at build time:
//
//	go build -ldflags "-X github.com/ostraka/segstream/version.Version=v1.2.0 ..."
var (
	// Version is the semantic version when built from a tag
	Version = "dev"

	// Commit is the git commit hash of the build
	Commit = "unknown"

	// BuildTime is when the binary was built
	BuildTime = "unknown"
)

// Info is one snapshot of the build identity plus the runtime it landed on.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get snapshots the stamped build identity.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the one-line form used by the version command and the
// startup banner.
func (i Info) String() string {
	return fmt.Sprintf("segstream %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}
