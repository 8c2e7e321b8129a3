// Package policy expands target profiles into ordered command lists and
// produces the plan summary used by ci:plan.
package policy

import (
	"fmt"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
)

// Expand resolves a target profile name to its ordered command list.
// Order is preserved and duplicates are kept; the profile author decides
// repetition. An undefined profile is an UnknownSelector error.
func Expand(cfg *config.Config, profile string) ([]devflow.CommandRef, error) {
	entries, ok := cfg.Targets[profile]
	if !ok {
		return nil, fmt.Errorf("%w: no target profile %q", devflow.ErrUnknownSelector, profile)
	}

	refs := make([]devflow.CommandRef, 0, len(entries))
	for _, entry := range entries {
		ref, err := devflow.ParseCommand(entry)
		if err != nil {
			return nil, fmt.Errorf("targets.%s: %w", profile, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Plan returns the defined profile names: reserved names first in their
// fixed order, then custom profiles lexicographically.
func Plan(cfg *config.Config) []string {
	return cfg.Profiles()
}
