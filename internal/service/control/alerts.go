package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/common"
	"github.com/oshokin/obs-streamdeck-ctl/internal/service/overlay"
)

// ErrNoAlertSources is returned when a button needs alert sources and none are configured.
var ErrNoAlertSources = errors.New("no alert sources configured")

// PanicOptions configures the panic button.
type PanicOptions struct {
	// Only restricts the toggle to these sources, e.g. the ones that failed last time.
	Only []string
}

// Panic toggles the alert sources without touching chat.
// The report is returned even when some sources failed.
func Panic(ctx context.Context, env *Env, opts *PanicOptions) (*domain.Report, error) {
	ctx = logger.WithName(ctx, "panic")

	return toggleAlerts(ctx, env, opts.Only)
}

// toggleAlerts runs the alert toggle over one compositor connection.
func toggleAlerts(ctx context.Context, env *Env, only []string) (*domain.Report, error) {
	if len(env.Config.OBS.AlertSources) == 0 {
		return nil, ErrNoAlertSources
	}

	names, err := overlay.Select(env.Config.OBS.AlertSources, only)
	if err != nil {
		return nil, err
	}

	var report *domain.Report

	err = common.WithCompositor(ctx, env.Dial, func(compositor common.Compositor) error {
		var toggleErr error

		report, toggleErr = overlay.NewToggler(compositor, env.Repo).Toggle(ctx, names)

		return toggleErr
	})
	if err != nil {
		return report, err
	}

	if failed := report.Err(); failed != nil {
		return report, fmt.Errorf("toggle alerts (retry with --only %s): %w",
			strings.Join(report.FailedNames(), ","), failed)
	}

	return report, nil
}
