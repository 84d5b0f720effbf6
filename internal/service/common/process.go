//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-ps"
)

// compositorExecutables are the process names OBS Studio runs under on each platform.
//
//nolint:gochecknoglobals // Read-only lookup table.
var compositorExecutables = map[string]struct{}{
	"obs":        {},
	"obs64.exe":  {},
	"obs32.exe":  {},
	"obs.exe":    {},
	"obs-studio": {},
}

// ProcessLister returns the running processes. ps.Processes satisfies it.
type ProcessLister func() ([]ps.Process, error)

// CompositorRunning reports whether an OBS process is running on this machine.
func CompositorRunning(list ProcessLister) (bool, error) {
	if list == nil {
		list = ps.Processes
	}

	processes, err := list()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	for _, p := range processes {
		if _, ok := compositorExecutables[strings.ToLower(p.Executable())]; ok {
			return true, nil
		}
	}

	return false, nil
}
