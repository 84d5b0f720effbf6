// Package version reports build metadata of obs-streamdeck-ctl.
//
// Version, Commit and BuildTime are set at link time, for example:
//
//	go build -ldflags "-X github.com/oshokin/obs-streamdeck-ctl/internal/version.Version=v0.2.0"
package version
