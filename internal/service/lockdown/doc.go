// Package lockdown drives one chat safety session: request capabilities,
// connect, join, wait for the first room state of the channel, send the
// planned commands and leave.
//
// The decision itself is made by the pure planner in domain/lockdown; this
// package only moves the session through its states over a chat connection.
package lockdown
