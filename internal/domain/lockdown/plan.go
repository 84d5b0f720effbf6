package lockdown

import (
	"strings"
)

// Chat commands emitted by the planner.
const (
	CommandEmoteOnly      = "/emoteonly"
	CommandEmoteOnlyOff   = "/emoteonlyoff"
	CommandFollowers      = "/followers"
	CommandFollowersOff   = "/followersoff"
	CommandSubscribers    = "/subscribers"
	CommandSubscribersOff = "/subscribersoff"
	CommandCommercial     = "/commercial"
	CommandClear          = "/clear"

	// commercialSeconds is the fixed advert length of the live safety button.
	commercialSeconds = "60"
)

// Dimension is one independently converged aspect of the room.
type Dimension string

// Dimensions in emission order.
const (
	DimensionAdvert   Dimension = "advert"
	DimensionClear    Dimension = "clear-chat"
	DimensionEmote    Dimension = "emote-only"
	DimensionFollower Dimension = "followers-only"
	DimensionSubs     Dimension = "subs-only"
)

// Direction tells the planner whether to lock the room down or lift the lockdown.
type Direction int

const (
	// Engage converges the room to the policy.
	Engage Direction = iota
	// Release converges the policy's dimensions back to "off". Extras never fire.
	Release
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == Release {
		return "release"
	}

	return "engage"
}

// Command is one chat command sent to the room.
type Command struct {
	Dimension Dimension
	Name      string
	Arg       string
}

// Text renders the command as a chat message.
func (c Command) Text() string {
	if c.Arg == "" {
		return c.Name
	}

	return c.Name + " " + c.Arg
}

// Skip records a dimension that was not converged and why.
type Skip struct {
	Dimension Dimension
	Reason    string
}

// Decision is the result of Plan.
type Decision struct {
	Commands []Command
	Skipped  []Skip
}

// Texts returns the chat messages of the decision, in order.
func (d Decision) Texts() []string {
	texts := make([]string, 0, len(d.Commands))
	for _, c := range d.Commands {
		texts = append(texts, c.Text())
	}

	return texts
}

// Converge plans the commands that lock the room down to the policy.
func Converge(room RoomState, policy Policy, extras Extras) Decision {
	return Plan(room, policy, extras, Engage)
}

// Plan computes the minimal commands moving one room state snapshot to the
// policy in the given direction. Every dimension emits at most one command.
// Dimensions whose room state is unknown are skipped rather than guessed.
// Method NONE leaves follower and subscriber restrictions untouched.
func Plan(room RoomState, policy Policy, extras Extras, dir Direction) Decision {
	var d Decision

	if !policy.Enabled {
		return d
	}

	if dir == Engage {
		d.planExtras(room, extras)
	}

	if policy.EmoteMode {
		d.planEmote(room, dir)
	}

	switch policy.Method {
	case MethodFollower:
		d.planFollowers(room, policy.FollowDuration, dir)
	case MethodSubscriber:
		d.planSubscribers(room, dir)
	case MethodNone, "":
	}

	return d
}

func (d *Decision) planExtras(room RoomState, extras Extras) {
	if !extras.Advert && !extras.ClearChat {
		return
	}

	if !room.FollowersOnly.Known || !room.SubsOnly.Known {
		if extras.Advert {
			d.skip(DimensionAdvert, "restriction state unknown")
		}

		if extras.ClearChat {
			d.skip(DimensionClear, "restriction state unknown")
		}

		return
	}

	// A room that is already locked down has had its one-shot actions.
	if !room.Open() {
		return
	}

	if extras.Advert {
		d.emit(DimensionAdvert, CommandCommercial, commercialSeconds)
	}

	if extras.ClearChat {
		d.emit(DimensionClear, CommandClear, "")
	}
}

func (d *Decision) planEmote(room RoomState, dir Direction) {
	if !room.EmoteOnly.Known {
		d.skip(DimensionEmote, "tag "+TagEmoteOnly+" unknown")
		return
	}

	want := dir == Engage

	switch {
	case room.EmoteOnly.Value == want:
	case want:
		d.emit(DimensionEmote, CommandEmoteOnly, "")
	default:
		d.emit(DimensionEmote, CommandEmoteOnlyOff, "")
	}
}

func (d *Decision) planFollowers(room RoomState, duration string, dir Direction) {
	if !room.FollowersOnly.Known {
		d.skip(DimensionFollower, "tag "+TagFollowersOnly+" unknown")
		return
	}

	if dir == Release {
		if room.FollowersRestricted() {
			d.emit(DimensionFollower, CommandFollowersOff, "")
		}

		return
	}

	minutes, err := ParseFollowDuration(duration)
	if err != nil {
		d.skip(DimensionFollower, err.Error())
		return
	}

	if room.FollowersOnly.Value != minutes {
		d.emit(DimensionFollower, CommandFollowers, strings.TrimSpace(duration))
	}
}

func (d *Decision) planSubscribers(room RoomState, dir Direction) {
	if !room.SubsOnly.Known {
		d.skip(DimensionSubs, "tag "+TagSubsOnly+" unknown")
		return
	}

	want := dir == Engage

	switch {
	case room.SubsOnly.Value == want:
	case want:
		d.emit(DimensionSubs, CommandSubscribers, "")
	default:
		d.emit(DimensionSubs, CommandSubscribersOff, "")
	}
}

func (d *Decision) emit(dim Dimension, name, arg string) {
	d.Commands = append(d.Commands, Command{Dimension: dim, Name: name, Arg: arg})
}

func (d *Decision) skip(dim Dimension, reason string) {
	d.Skipped = append(d.Skipped, Skip{Dimension: dim, Reason: reason})
}

// Apply returns the room state expected after the commands took effect.
func (r RoomState) Apply(commands []Command) RoomState {
	next := r

	for _, c := range commands {
		switch c.Name {
		case CommandEmoteOnly:
			next.EmoteOnly = Seen(true)
		case CommandEmoteOnlyOff:
			next.EmoteOnly = Seen(false)
		case CommandFollowers:
			if minutes, err := ParseFollowDuration(c.Arg); err == nil {
				next.FollowersOnly = Seen(minutes)
			}
		case CommandFollowersOff:
			next.FollowersOnly = Seen(FollowersOff)
		case CommandSubscribers:
			next.SubsOnly = Seen(true)
		case CommandSubscribersOff:
			next.SubsOnly = Seen(false)
		}
	}

	return next
}
