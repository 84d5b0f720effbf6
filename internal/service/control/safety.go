package control

import (
	"context"
	"errors"
	"fmt"

	domlockdown "github.com/oshokin/obs-streamdeck-ctl/internal/domain/lockdown"
	domain "github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/lockdown"
)

// errDirectionUnknown is returned when the alert toggle moved sources both ways.
var errDirectionUnknown = errors.New("cannot tell whether to engage or release chat safety")

// StartStopResult reports what the start-stop button did.
type StartStopResult struct {
	// WasStreaming is the streaming state before the toggle.
	WasStreaming bool
	// Safety is nil when no chat session was run.
	Safety *lockdown.Result
}

// StartStop toggles streaming, then applies the start-stop safety policy to chat.
// Going offline engages the policy, going live releases it.
func StartStop(ctx context.Context, env *Env) (*StartStopResult, error) {
	ctx = logger.WithName(ctx, "start-stop")

	result := &StartStopResult{}

	err := common.WithCompositor(ctx, env.Dial, func(compositor common.Compositor) error {
		status, err := compositor.GetStreamingStatus(ctx)
		if err != nil {
			return fmt.Errorf("get streaming status: %w", err)
		}

		result.WasStreaming = status.Streaming

		if err = compositor.StartStopStreaming(ctx); err != nil {
			return fmt.Errorf("start/stop streaming: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Streaming toggled", "was_streaming", result.WasStreaming)

	if env.Config.StartStopSafety == nil {
		return result, nil
	}

	direction := domlockdown.Release
	if result.WasStreaming {
		direction = domlockdown.Engage
	}

	result.Safety, err = runSafety(ctx, env, lockdown.Options{
		Policy:    env.Config.StartStopSafety.Policy(),
		Direction: direction,
	})

	return result, err
}

// LiveSafetyOptions configures the live safety button.
type LiveSafetyOptions struct {
	// Only restricts the alert toggle to these sources.
	Only []string
	// Direction overrides the direction derived from the alert toggle.
	Direction *domlockdown.Direction
}

// LiveSafetyResult reports what the live safety button did.
type LiveSafetyResult struct {
	Alerts *domain.Report
	// Safety is nil when no chat session was run.
	Safety *lockdown.Result
}

// LiveSafety toggles the alert sources, then converges chat to the live safety policy.
// Disabling the alerts engages the policy and fires the extras, restoring them releases it.
// Without configured alert sources, or when no source could be toggled, the policy is engaged.
func LiveSafety(ctx context.Context, env *Env, opts *LiveSafetyOptions) (*LiveSafetyResult, error) {
	ctx = logger.WithName(ctx, "live-safety")

	result := &LiveSafetyResult{}

	var alertsErr error

	if len(env.Config.OBS.AlertSources) > 0 {
		result.Alerts, alertsErr = toggleAlerts(ctx, env, opts.Only)
		if result.Alerts == nil {
			return result, alertsErr
		}
	}

	if env.Config.LiveSafety == nil {
		return result, alertsErr
	}

	direction, ok := liveDirection(result.Alerts, opts.Direction)
	if !ok {
		logger.WarnKV(ctx, "Chat safety skipped", "reason", errDirectionUnknown)

		return result, errors.Join(alertsErr, errDirectionUnknown)
	}

	safety, err := runSafety(ctx, env, lockdown.Options{
		Policy:    env.Config.LiveSafety.Policy(),
		Extras:    env.Config.Additional.Extras(),
		Direction: direction,
	})
	result.Safety = safety

	return result, errors.Join(alertsErr, err)
}

// liveDirection maps the alert transition to a chat direction unless overridden.
// Only sources moved in both directions leave it undecided.
func liveDirection(report *domain.Report, override *domlockdown.Direction) (domlockdown.Direction, bool) {
	if override != nil {
		return *override, true
	}

	if report == nil || len(report.Succeeded) == 0 {
		return domlockdown.Engage, true
	}

	transition, ok := report.Transition()
	if !ok {
		return domlockdown.Engage, false
	}

	if transition == domain.Restore {
		return domlockdown.Release, true
	}

	return domlockdown.Engage, true
}

// runSafety runs one chat session with the configured credentials.
func runSafety(ctx context.Context, env *Env, opts lockdown.Options) (*lockdown.Result, error) {
	if err := env.Config.ValidateChat(); err != nil {
		return nil, err
	}

	opts.Channel = env.Config.Twitch.Channel
	opts.ObservationTimeout = env.Config.Twitch.ObservationTimeout

	return lockdown.NewSession(env.Chat(env.Config.Twitch), opts).Run(ctx)
}
