package lockdown

import (
	"errors"
	"fmt"
	"strconv"
)

// Room state tag keys carried by ROOMSTATE.
const (
	TagEmoteOnly     = "emote-only"
	TagFollowersOnly = "followers-only"
	TagSubsOnly      = "subs-only"
)

// FollowersOff is the followers-only value of a room without follower restriction.
const FollowersOff = -1

var (
	// ErrMalformedRoomState is returned when a room state tag is missing or unparsable.
	ErrMalformedRoomState = errors.New("malformed room state")
	// ErrInvalidFlag is returned by ParseFlag for anything other than "0" or "1".
	ErrInvalidFlag = errors.New("invalid flag")
)

// Observed is a room state value that may be unknown.
type Observed[T comparable] struct {
	Value T
	Known bool
}

// Is reports whether the value is known and equal to v.
func (o Observed[T]) Is(v T) bool {
	return o.Known && o.Value == v
}

// Seen wraps a value observed in a room state event.
func Seen[T comparable](v T) Observed[T] {
	return Observed[T]{Value: v, Known: true}
}

// RoomState is the lockdown snapshot of one ROOMSTATE event.
type RoomState struct {
	EmoteOnly Observed[bool]
	// FollowersOnly is the required follow age in minutes, FollowersOff when disabled.
	FollowersOnly Observed[int]
	SubsOnly      Observed[bool]
}

// FollowersRestricted reports whether follower mode is known to be on.
func (r RoomState) FollowersRestricted() bool {
	return r.FollowersOnly.Known && r.FollowersOnly.Value != FollowersOff
}

// Open reports whether the room is known to be neither follower nor subscriber restricted.
func (r RoomState) Open() bool {
	return r.FollowersOnly.Is(FollowersOff) && r.SubsOnly.Is(false)
}

// ParseFlag parses a string-encoded boolean tag value.
func ParseFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("%q: %w", s, ErrInvalidFlag)
	}
}

// ParseFollowers parses the followers-only tag: -1 off, otherwise minutes.
func ParseFollowers(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < FollowersOff {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidFlag)
	}

	return n, nil
}

// ParseRoomState builds a snapshot from ROOMSTATE tags.
// Missing or malformed tags leave their dimension unknown; each problem is
// reported as an error wrapping ErrMalformedRoomState.
func ParseRoomState(tags map[string]string) (RoomState, []error) {
	var (
		state RoomState
		errs  []error
	)

	if v, ok := lookup(tags, TagEmoteOnly, &errs); ok {
		if b, err := ParseFlag(v); err != nil {
			errs = append(errs, malformed(TagEmoteOnly, err))
		} else {
			state.EmoteOnly = Seen(b)
		}
	}

	if v, ok := lookup(tags, TagFollowersOnly, &errs); ok {
		if n, err := ParseFollowers(v); err != nil {
			errs = append(errs, malformed(TagFollowersOnly, err))
		} else {
			state.FollowersOnly = Seen(n)
		}
	}

	if v, ok := lookup(tags, TagSubsOnly, &errs); ok {
		if b, err := ParseFlag(v); err != nil {
			errs = append(errs, malformed(TagSubsOnly, err))
		} else {
			state.SubsOnly = Seen(b)
		}
	}

	return state, errs
}

func lookup(tags map[string]string, key string, errs *[]error) (string, bool) {
	v, ok := tags[key]
	if !ok {
		*errs = append(*errs, fmt.Errorf("tag %s missing: %w", key, ErrMalformedRoomState))
	}

	return v, ok
}

func malformed(key string, err error) error {
	return fmt.Errorf("tag %s: %w: %w", key, ErrMalformedRoomState, err)
}
