// Package overlay holds the alert overlay toggle engine.
//
// Toggle is a pure decision: given what the state store remembers about a
// browser source and the URL the compositor currently reports, it returns the
// opposite state or ErrProtocolMismatch. Pushing the result to the compositor
// is the caller's job.
package overlay
