// Package obsws is a minimal obs-websocket 4.x client.
//
// It covers the requests the control buttons use: source settings, mute,
// source and scene lists, scene switching and streaming. A Client is meant to
// live for one unit of work: dial, do the work, close.
package obsws
