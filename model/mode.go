// Package model defines the segmentation model profiles, the backend
// abstraction over loaded models, and the process-wide pool that caches
// one loaded backend per mode.
package model

import (
	"github.com/ostraka/segstream/errors"
)

// Mode selects one of the built-in segmentation profiles.
type Mode int

const (
	ModeFast     Mode = iota // lightest model, highest throughput
	ModeBalanced             // default
	ModeAccurate             // transformer head, ADE20K vocabulary
	ModeSOTA                 // query-based head, ADE20K vocabulary
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeBalanced:
		return "balanced"
	case ModeAccurate:
		return "accurate"
	case ModeSOTA:
		return "sota"
	default:
		return "unknown"
	}
}

// ParseMode maps a wire name to a Mode. Names are matched exactly; the
// client contract sends lowercase.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "fast":
		return ModeFast, nil
	case "balanced":
		return ModeBalanced, nil
	case "accurate":
		return ModeAccurate, nil
	case "sota":
		return ModeSOTA, nil
	default:
		return 0, errors.Newf("unknown model mode %q", s)
	}
}

// Modes returns every mode in profile-table order.
func Modes() []Mode {
	return []Mode{ModeFast, ModeBalanced, ModeAccurate, ModeSOTA}
}

// ModeNames returns the wire names of every mode, in the same order as
// Modes. Used for the connected envelope and the health endpoint.
func ModeNames() []string {
	modes := Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return names
}
