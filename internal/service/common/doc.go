// Package common holds helpers shared by several services.
//
// It defines the Compositor surface and a Dialer opening one obs-websocket
// connection per unit of work, the error kinds surfaced to the CLI, and a
// process check used to explain failed connections.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
