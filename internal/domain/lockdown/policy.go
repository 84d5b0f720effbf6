package lockdown

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Method is the chat restriction a safety policy locks the room with.
type Method string

// Supported lockdown methods.
const (
	MethodNone       Method = "NONE"
	MethodFollower   Method = "FOLLOWER"
	MethodSubscriber Method = "SUBSCRIBER"
)

var (
	// ErrUnknownMethod is returned for methods other than NONE, FOLLOWER and SUBSCRIBER.
	ErrUnknownMethod = errors.New("unknown lockdown method")
	// ErrInvalidFollowDuration is returned for durations the follower-mode command would reject.
	ErrInvalidFollowDuration = errors.New("invalid follow duration")
)

// ParseMethod parses a method name. An empty name means NONE.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case "", MethodNone:
		return MethodNone, nil
	case MethodFollower, MethodSubscriber:
		return m, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownMethod)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if m == "" {
		return []byte(MethodNone), nil
	}

	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// Policy is the target lockdown a chat room is converged to.
type Policy struct {
	// Enabled turns the whole policy on. A disabled policy observes and emits nothing.
	Enabled bool
	// Method selects the follower or subscriber restriction.
	Method Method
	// EmoteMode adds emote-only chat to the lockdown.
	EmoteMode bool
	// FollowDuration is the minimum follow age for FOLLOWER, e.g. "1d" or "30m".
	FollowDuration string
}

// Validate checks that the policy can be turned into chat commands.
func (p Policy) Validate() error {
	if _, err := ParseMethod(string(p.Method)); err != nil {
		return err
	}

	if p.Method != MethodFollower {
		return nil
	}

	if _, err := ParseFollowDuration(p.FollowDuration); err != nil {
		return err
	}

	return nil
}

// followDurationPattern accepts the forms the follower-mode command understands.
var followDurationPattern = regexp.MustCompile(`^(\d+)\s*([a-z]*)$`)

const (
	minutesPerHour  = 60
	minutesPerDay   = 24 * minutesPerHour
	minutesPerWeek  = 7 * minutesPerDay
	minutesPerMonth = 30 * minutesPerDay
	// maxFollowMinutes is the longest follower requirement chat accepts (three months).
	maxFollowMinutes = 3 * minutesPerMonth
)

// ParseFollowDuration converts a follower-mode duration into minutes.
// A bare number is minutes, as it is for the chat command.
func ParseFollowDuration(s string) (int, error) {
	match := followDurationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if match == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidFollowDuration)
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidFollowDuration)
	}

	var unit int

	switch match[2] {
	case "", "m", "min", "mins", "minute", "minutes":
		unit = 1
	case "h", "hr", "hrs", "hour", "hours":
		unit = minutesPerHour
	case "d", "day", "days":
		unit = minutesPerDay
	case "w", "wk", "week", "weeks":
		unit = minutesPerWeek
	case "mo", "month", "months":
		unit = minutesPerMonth
	default:
		return 0, fmt.Errorf("%q: unknown unit %q: %w", s, match[2], ErrInvalidFollowDuration)
	}

	// Checked before multiplying so huge counts cannot wrap around.
	if n < 0 || n > maxFollowMinutes/unit {
		return 0, fmt.Errorf("%q exceeds three months: %w", s, ErrInvalidFollowDuration)
	}

	return n * unit, nil
}

// Extras are the one-shot actions of the live safety button.
type Extras struct {
	// Advert runs a 60 second commercial.
	Advert bool
	// ClearChat wipes the visible chat history.
	ClearChat bool
}
