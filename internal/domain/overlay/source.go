package overlay

import (
	"errors"
	"fmt"
)

// SentinelURL marks a browser source as disabled.
// It is only ever compared against, the compositor must never be asked to load anything else with it.
const SentinelURL = "http://invalid.lan"

// ErrProtocolMismatch is returned when the compositor reports a URL that is
// neither the stored URL nor the sentinel, e.g. the source was edited by hand.
var ErrProtocolMismatch = errors.New("observed url matches neither stored url nor sentinel")

// Source is an alert overlay browser source as remembered by the state store.
type Source struct {
	// Name is the compositor source name, case sensitive.
	Name string
	// StoredURL is the real overlay address, captured on first observation.
	StoredURL string
	// RerouteAudio is the source's current "control audio via compositor" flag.
	RerouteAudio bool
}

// Transition describes which way a toggle moved a source.
type Transition int

const (
	// Disable swaps the real URL for the sentinel.
	Disable Transition = iota + 1
	// Restore puts the stored URL back.
	Restore
)

// String implements fmt.Stringer.
func (t Transition) String() string {
	switch t {
	case Disable:
		return "disable"
	case Restore:
		return "restore"
	default:
		return "unknown"
	}
}

// Toggled is the outcome of Toggle.
type Toggled struct {
	URL          string
	RerouteAudio bool
	Transition   Transition
}

// Toggle computes the opposite state of a source from the URL the compositor currently reports.
// It is an involution over {StoredURL, SentinelURL}.
func Toggle(source Source, observedURL string) (Toggled, error) {
	switch observedURL {
	case source.StoredURL:
		return Toggled{
			URL:          SentinelURL,
			RerouteAudio: !source.RerouteAudio,
			Transition:   Disable,
		}, nil
	case SentinelURL:
		return Toggled{
			URL:          source.StoredURL,
			RerouteAudio: !source.RerouteAudio,
			Transition:   Restore,
		}, nil
	default:
		return Toggled{}, fmt.Errorf("source %q observed %q, stored %q: %w",
			source.Name, observedURL, source.StoredURL, ErrProtocolMismatch)
	}
}

// Capture returns the stored URL to use for a source seen for the first time.
// A source that is already on the sentinel cannot be captured: its real URL is unknown.
func Capture(name, observedURL string) (Source, error) {
	if observedURL == SentinelURL || observedURL == "" {
		return Source{}, fmt.Errorf("source %q has no stored url and reports %q: %w",
			name, observedURL, ErrProtocolMismatch)
	}

	return Source{Name: name, StoredURL: observedURL}, nil
}
