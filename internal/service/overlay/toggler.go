package overlay

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/obs-streamdeck-ctl/internal/domain/overlay"
	"github.com/oshokin/obs-streamdeck-ctl/internal/logger"
	"github.com/oshokin/obs-streamdeck-ctl/internal/obsws"
	repo "github.com/oshokin/obs-streamdeck-ctl/internal/repository/state"
)

// ErrUnknownSource is returned when a source outside the configured list is selected.
var ErrUnknownSource = errors.New("source is not configured as an alert source")

// Compositor is the part of the compositor API the toggle needs.
type Compositor interface {
	GetSourceSettings(ctx context.Context, source string) (*obsws.SourceSettings, error)
	SetSourceSettings(ctx context.Context, source string, settings map[string]any) error
	ToggleMute(ctx context.Context, source string) error
}

// Toggler flips alert sources between their stored URL and the sentinel.
type Toggler struct {
	// compositor receives the settings and mute requests.
	compositor Compositor
	// repo persists URLs captured on first observation.
	repo repo.Repository
}

// NewToggler creates a toggler. A nil repository keeps captured URLs in memory only.
func NewToggler(compositor Compositor, repository repo.Repository) *Toggler {
	return &Toggler{
		compositor: compositor,
		repo:       repository,
	}
}

// Toggle flips every named source and reports which succeeded and which failed.
// The returned error covers loading and saving the state store only; per-source
// failures are in the report.
func (t *Toggler) Toggle(ctx context.Context, names []string) (*domain.Report, error) {
	registry := domain.NewRegistry(nil)

	if t.repo != nil {
		loaded, err := repo.LoadOrEmpty(ctx, t.repo)
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}

		registry = loaded
	}

	report := &domain.Report{}
	captured := false

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, &domain.SourceError{
				Source: name,
				Stage:  domain.StageGetSettings,
				Err:    err,
			})

			continue
		}

		outcome, remembered, srcErr := t.toggleOne(ctx, registry, name)
		captured = captured || remembered

		if srcErr != nil {
			logger.ErrorKV(ctx, "Alert source toggle failed",
				"source", name,
				"stage", srcErr.Stage,
				"partial", srcErr.Partial(),
				"error", srcErr.Err)

			report.Failed = append(report.Failed, srcErr)

			continue
		}

		logger.InfoKV(ctx, "Alert source toggled",
			"source", name,
			"transition", outcome.Transition.String(),
			"url", outcome.URL)

		report.Succeeded = append(report.Succeeded, outcome)
	}

	// Captures are kept even when the source failed later on.
	if captured && t.repo != nil {
		if err := t.repo.Save(ctx, registry); err != nil {
			return report, fmt.Errorf("persist state: %w", err)
		}
	}

	return report, nil
}

// toggleOne converges a single source. The bool reports a new capture.
func (t *Toggler) toggleOne(
	ctx context.Context,
	registry *domain.Registry,
	name string,
) (domain.Outcome, bool, *domain.SourceError) {
	fail := func(stage domain.Stage, err error) *domain.SourceError {
		return &domain.SourceError{Source: name, Stage: stage, Err: err}
	}

	settings, err := t.compositor.GetSourceSettings(ctx, name)
	if err != nil {
		return domain.Outcome{}, false, fail(domain.StageGetSettings, err)
	}

	observed := settings.URL()
	remembered := false

	source, ok := registry.Lookup(name)
	if !ok {
		source, err = domain.Capture(name, observed)
		if err != nil {
			return domain.Outcome{}, false, fail(domain.StageCapture, err)
		}

		remembered = registry.Remember(source)

		logger.InfoKV(ctx, "Captured alert source url", "source", name, "url", observed)
	}

	source.RerouteAudio = settings.RerouteAudio()

	toggled, err := domain.Toggle(source, observed)
	if err != nil {
		return domain.Outcome{}, remembered, fail(domain.StageToggle, err)
	}

	if err = t.compositor.SetSourceSettings(ctx, name, settings.WithBrowser(toggled.URL, toggled.RerouteAudio)); err != nil {
		return domain.Outcome{}, remembered, fail(domain.StageSetSettings, err)
	}

	// Settings are already pushed here; a failure leaves the source half-updated.
	if err = t.compositor.ToggleMute(ctx, name); err != nil {
		return domain.Outcome{}, remembered, fail(domain.StageToggleMute, err)
	}

	return domain.Outcome{
		Source:     name,
		Transition: toggled.Transition,
		URL:        toggled.URL,
	}, remembered, nil
}

// Select narrows the configured sources to the requested ones, keeping configured order.
// An empty selection means every configured source.
func Select(configured, only []string) ([]string, error) {
	if len(only) == 0 {
		return append([]string(nil), configured...), nil
	}

	known := make(map[string]struct{}, len(configured))
	for _, name := range configured {
		known[name] = struct{}{}
	}

	wanted := make(map[string]struct{}, len(only))
	for _, name := range only {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownSource)
		}

		wanted[name] = struct{}{}
	}

	selected := make([]string, 0, len(wanted))
	for _, name := range configured {
		if _, ok := wanted[name]; ok {
			selected = append(selected, name)
		}
	}

	return selected, nil
}
