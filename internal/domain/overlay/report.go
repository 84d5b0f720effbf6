package overlay

import (
	"errors"
	"fmt"
)

// Stage names the step of a per-source toggle that failed.
type Stage string

// Stages of a per-source toggle, in execution order.
const (
	StageGetSettings Stage = "get settings"
	StageCapture     Stage = "capture url"
	StageToggle      Stage = "toggle"
	StageSetSettings Stage = "set settings"
	StageToggleMute  Stage = "toggle mute"
)

// SourceError reports a failed toggle for one source.
type SourceError struct {
	Source string
	Stage  Stage
	Err    error
}

// Error implements error.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %s: %v", e.Source, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Partial reports whether the compositor was left half-updated:
// settings were pushed but the mute toggle did not follow.
func (e *SourceError) Partial() bool {
	return e.Stage == StageToggleMute
}

// Outcome is a successfully toggled source.
type Outcome struct {
	Source     string
	Transition Transition
	URL        string
}

// Report collects the result of toggling a batch of sources.
type Report struct {
	Succeeded []Outcome
	Failed    []*SourceError
}

// Err joins all per-source failures, nil when every source was toggled.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}

	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}

	return errors.Join(errs...)
}

// FailedNames lists the sources to retry.
func (r *Report) FailedNames() []string {
	names := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		names = append(names, f.Source)
	}

	return names
}

// Transition returns the direction taken by the batch.
// Mixed or empty batches report false.
func (r *Report) Transition() (Transition, bool) {
	if len(r.Succeeded) == 0 {
		return 0, false
	}

	first := r.Succeeded[0].Transition
	for _, o := range r.Succeeded[1:] {
		if o.Transition != first {
			return 0, false
		}
	}

	return first, true
}
