package lockdown

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/obs-streamdeck-ctl/internal/chat"
	domain "github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
)

// Conn is the chat connection a session drives. *chat.Client satisfies it.
type Conn interface {
	RequestCapabilities(caps ...string)
	OnConnect(fn func())
	OnRoomState(fn func(channel string, tags map[string]string))
	Join(channel string)
	Say(channel, message string)
	Connect() error
	Disconnect() error
}

// State is a session lifecycle state.
type State int

// Session states in lifecycle order.
const (
	StateIdle State = iota
	StateCapabilitiesRequested
	StateConnected
	StateJoined
	StateObserved
	StateConverged
	StateTerminated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapabilitiesRequested:
		return "capabilities-requested"
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateObserved:
		return "observed"
	case StateConverged:
		return "converged"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

const (
	// DefaultObservationTimeout bounds the wait for the first room state.
	DefaultObservationTimeout = 15 * time.Second

	// closeTimeout bounds the wait for the connection loop to exit after Disconnect.
	closeTimeout = 5 * time.Second
)

var (
	// errClosedBeforeObservation is returned when the server hung up before sending a room state.
	errClosedBeforeObservation = errors.New("connection closed before room state arrived")
	// errChannelRequired is returned for sessions without a channel.
	errChannelRequired = errors.New("channel is required")
)

// Options configures a safety session.
type Options struct {
	// Channel is the chat room to converge.
	Channel string
	// Policy is the target lockdown.
	Policy domain.Policy
	// Extras are the one-shot actions of the live safety button.
	Extras domain.Extras
	// Direction selects engaging or releasing the policy.
	Direction domain.Direction
	// ObservationTimeout overrides DefaultObservationTimeout when positive.
	ObservationTimeout time.Duration
}

// Result is what a finished session observed and sent.
type Result struct {
	// Room is the observed snapshot.
	Room domain.RoomState
	// Decision lists sent commands and skipped dimensions.
	Decision domain.Decision
}

// Session is a single-use safety session.
type Session struct {
	conn Conn
	opts Options

	// mu guards state; chat callbacks run on the connection goroutine.
	mu      sync.Mutex
	state   State
	history []State
}

// NewSession creates a session over conn.
func NewSession(conn Conn, opts Options) *Session {
	if opts.ObservationTimeout <= 0 {
		opts.ObservationTimeout = DefaultObservationTimeout
	}

	return &Session{
		conn:    conn,
		opts:    opts,
		history: []State{StateIdle},
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// History returns every state the session went through, in order.
func (s *Session) History() []State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]State(nil), s.history...)
}

func (s *Session) setState(ctx context.Context, state State) {
	s.mu.Lock()
	s.state = state
	s.history = append(s.history, state)
	s.mu.Unlock()

	logger.DebugKV(ctx, "Safety session state", "state", state.String())
}

// Run executes the session once. It always ends in StateTerminated.
// A disabled policy still observes the room and sends nothing.
//
//nolint:funlen // The lifecycle reads best as one sequence.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if s.opts.Channel == "" {
		return nil, errChannelRequired
	}

	channel := strings.ToLower(s.opts.Channel)
	ctx = logger.WithKV(logger.WithName(ctx, "safety-session"), "channel", channel)

	defer s.setState(ctx, StateTerminated)

	// Capabilities are negotiated during the handshake, so JOIN can never precede them.
	s.conn.RequestCapabilities(chat.Capabilities...)
	s.setState(ctx, StateCapabilitiesRequested)

	rooms := make(chan map[string]string, 1)

	var first sync.Once

	s.conn.OnConnect(func() {
		s.setState(ctx, StateConnected)
		s.conn.Join(channel)
		s.setState(ctx, StateJoined)
	})

	s.conn.OnRoomState(func(from string, tags map[string]string) {
		if !strings.EqualFold(from, channel) {
			return
		}

		first.Do(func() {
			rooms <- maps.Clone(tags)
		})
	})

	done := make(chan error, 1)

	go func() {
		done <- s.conn.Connect()
	}()

	timer := time.NewTimer(s.opts.ObservationTimeout)
	defer timer.Stop()

	var (
		tags map[string]string
		// hungUp is set when the server closed the connection right after the room state.
		hungUp error
	)

	select {
	case tags = <-rooms:
	case err := <-done:
		if err == nil {
			err = errClosedBeforeObservation
		}

		select {
		case tags = <-rooms:
			hungUp = err
			done = ended(err)
		default:
			return nil, fmt.Errorf("%w: chat: %w", common.ErrConnectionFailure, err)
		}
	case <-timer.C:
		s.disconnect(ctx, done)

		return nil, fmt.Errorf("%w after %s", common.ErrObservationTimeout, s.opts.ObservationTimeout)
	case <-ctx.Done():
		s.disconnect(ctx, done)

		return nil, ctx.Err()
	}

	s.setState(ctx, StateObserved)

	room, problems := domain.ParseRoomState(tags)
	for _, problem := range problems {
		logger.WarnKV(ctx, "Ignoring room state tag", "error", problem)
	}

	decision := domain.Plan(room, s.opts.Policy, s.opts.Extras, s.opts.Direction)
	for _, skip := range decision.Skipped {
		logger.WarnKV(ctx, "Dimension left untouched", "dimension", skip.Dimension, "reason", skip.Reason)
	}

	result := &Result{Room: room, Decision: decision}

	if hungUp != nil && len(decision.Commands) > 0 {
		return result, fmt.Errorf("%w: chat closed before commands were sent: %w", common.ErrConnectionFailure, hungUp)
	}

	for _, command := range decision.Commands {
		logger.InfoKV(ctx, "Sending chat command", "command", command.Text())
		s.conn.Say(channel, command.Text())
	}

	s.setState(ctx, StateConverged)
	s.disconnect(ctx, done)

	logger.InfoKV(ctx, "Safety session finished",
		"direction", s.opts.Direction.String(),
		"enabled", s.opts.Policy.Enabled,
		"commands", len(decision.Commands),
		"skipped", len(decision.Skipped))

	return result, nil
}

// ended returns a channel already holding the connection loop's result.
func ended(err error) chan error {
	ch := make(chan error, 1)
	ch <- err

	return ch
}

// disconnect closes the connection and waits for the connection loop to return.
func (s *Session) disconnect(ctx context.Context, done <-chan error) {
	if err := s.conn.Disconnect(); err != nil {
		logger.WarnKV(ctx, "Chat disconnect failed", "error", err)
	}

	select {
	case err := <-done:
		if err != nil {
			logger.DebugKV(ctx, "Chat connection ended", "error", err)
		}
	case <-time.After(closeTimeout):
		logger.WarnKV(ctx, "Chat connection did not close in time")
	}
}
