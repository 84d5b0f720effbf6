package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag of the build, set with -ldflags "-X".
	Version = "0.1.0-dev"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the release tag only.
func Short() string {
	return Version
}

// Full renders the release tag with build metadata and the platform it was built for.
func Full() string {
	return fmt.Sprintf("obs-streamdeck-ctl %s (commit %s, built %s, %s/%s)",
		Version, Commit, BuildTime, runtime.GOOS, runtime.GOARCH)
}
