//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/obs-streamdeck-ctl/internal/config"
	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/obsws"
)

var (
	// ErrConnectionFailure is returned when the compositor or chat cannot be reached or refuses the login.
	// Nothing retries it; the caller may run the command again after fixing settings.
	ErrConnectionFailure = errors.New("connection failure")
	// ErrObservationTimeout is returned when chat never delivered the room state.
	ErrObservationTimeout = errors.New("timed out waiting for room state")
)

// Compositor is the compositor control surface the services depend on. *obsws.Client satisfies it.
type Compositor interface {
	GetSourceSettings(ctx context.Context, source string) (*obsws.SourceSettings, error)
	SetSourceSettings(ctx context.Context, source string, settings map[string]any) error
	ToggleMute(ctx context.Context, source string) error
	GetSourcesList(ctx context.Context) ([]obsws.SourceInfo, error)
	GetSceneList(ctx context.Context) (*obsws.SceneList, error)
	SetCurrentScene(ctx context.Context, scene string) error
	StartStopStreaming(ctx context.Context) error
	GetStreamingStatus(ctx context.Context) (*obsws.StreamingStatus, error)
	Close() error
}

// Dialer opens one compositor connection for one unit of work.
type Dialer func(ctx context.Context) (Compositor, error)

// NewDialer returns a Dialer for the configured obs-websocket endpoint.
// A failed dial is reported as ErrConnectionFailure, with a hint when no OBS process is running.
func NewDialer(settings config.OBS) Dialer {
	return func(ctx context.Context) (Compositor, error) {
		client, err := obsws.Dial(ctx, settings.Address, settings.Password, obsws.WithCallTimeout(settings.Timeout))
		if err == nil {
			return client, nil
		}

		if running, psErr := CompositorRunning(nil); psErr == nil && !running {
			return nil, fmt.Errorf("%w: %w (no OBS process is running)", ErrConnectionFailure, err)
		} else if psErr != nil {
			logger.DebugKV(ctx, "Process list unavailable", "error", psErr)
		}

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailure, err)
	}
}

// WithCompositor dials, runs fn and closes the connection.
func WithCompositor(ctx context.Context, dial Dialer, fn func(Compositor) error) error {
	compositor, err := dial(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := compositor.Close(); closeErr != nil {
			logger.DebugKV(ctx, "Closing compositor connection failed", "error", closeErr)
		}
	}()

	return fn(compositor)
}
