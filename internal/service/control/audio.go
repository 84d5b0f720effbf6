package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
)

// MuteTarget selects which audio sources the mute button flips.
type MuteTarget string

// Mute targets.
const (
	MuteMic     MuteTarget = "mic"
	MuteDesktop MuteTarget = "desk"
	MuteAll     MuteTarget = "all"
)

// ErrUnknownMuteTarget is returned for targets other than mic, desk and all.
var ErrUnknownMuteTarget = errors.New("mute target must be one of mic, desk, all")

// ParseMuteTarget parses a mute target, case-insensitively.
func ParseMuteTarget(s string) (MuteTarget, error) {
	switch target := MuteTarget(strings.ToLower(strings.TrimSpace(s))); target {
	case MuteMic, MuteDesktop, MuteAll:
		return target, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownMuteTarget)
	}
}

// sources returns the configured audio sources the target covers.
func (t MuteTarget) sources(env *Env) []string {
	switch t {
	case MuteMic:
		return []string{env.Config.OBS.MicSource}
	case MuteDesktop:
		return []string{env.Config.OBS.DesktopSource}
	case MuteAll:
		return []string{env.Config.OBS.MicSource, env.Config.OBS.DesktopSource}
	default:
		return nil
	}
}

// Mute flips the mute state of the targeted audio sources.
// Every source is attempted; failures are joined.
func Mute(ctx context.Context, env *Env, target MuteTarget) error {
	ctx = logger.WithName(ctx, "mute")

	sources := target.sources(env)
	if len(sources) == 0 {
		return fmt.Errorf("%q: %w", target, ErrUnknownMuteTarget)
	}

	return common.WithCompositor(ctx, env.Dial, func(compositor common.Compositor) error {
		var errs []error

		for _, source := range sources {
			if err := compositor.ToggleMute(ctx, source); err != nil {
				errs = append(errs, fmt.Errorf("toggle mute %q: %w", source, err))

				continue
			}

			logger.InfoKV(ctx, "Mute toggled", "source", source)
		}

		return errors.Join(errs...)
	})
}
