// Package state persists the overlay registry: the real URL of every alert
// source, captured the first time the panic button saw it.
//
// The FileRepository stores it as YAML next to the settings file and exposes
// a Repository interface that the overlay service depends on.
package state
