package extension

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
)

// Registry holds the ordered extension set for one invocation. It is
// immutable after NewRegistry returns.
type Registry struct {
	entries []Extension
}

// NewRegistry populates the registry for a loaded config: builtins for
// configured stacks first in stack order, then subprocess extensions
// discovered on PATH (and any explicit source=path binaries), then the
// custom delegate. The entries are then ordered by their stack's position
// in project.stack; extensions for stacks outside that list follow in
// discovery order. A discovery failure skips the extension with a warning
// unless the config marks it required.
func NewRegistry(ctx context.Context, cfg *config.Config, repoRoot string) (*Registry, error) {
	reg := &Registry{}
	builtins := Builtins()

	for _, stack := range cfg.Project.Stack {
		if ext, ok := builtins[stack]; ok && extSource(cfg, stack) == "builtin" {
			reg.entries = append(reg.entries, ext)
		}
	}

	registered := make(map[string]bool)
	for _, e := range reg.entries {
		registered[e.Name()] = true
	}

	candidates := scanPath(os.Getenv("PATH"))
	for name, ext := range cfg.Extensions {
		if ext.Source == "path" && !registered[name] {
			candidates = append(candidates, discovered{name: name, path: ext.Path})
		}
	}

	for _, d := range candidates {
		if registered[d.name] {
			continue
		}
		sub, err := probe(ctx, d)
		if err != nil {
			if isRequired(cfg, d.name) {
				return nil, err
			}
			slog.Warn("skipping extension", "name", d.name, "binary", d.path, "error", err)
			continue
		}
		if declared := cfg.Extensions[d.name].Capabilities; len(declared) > 0 {
			sub.caps = declared
		}
		registered[d.name] = true
		reg.entries = append(reg.entries, sub)
	}

	if cfg.HasStack("custom") {
		reg.entries = append(reg.entries, NewDelegate(repoRoot))
	}

	rank := make(map[string]int, len(cfg.Project.Stack))
	for i, stack := range cfg.Project.Stack {
		rank[stack] = i
	}
	position := func(e Extension) int {
		if i, ok := rank[e.Name()]; ok {
			return i
		}
		return len(rank)
	}
	sort.SliceStable(reg.entries, func(i, j int) bool {
		return position(reg.entries[i]) < position(reg.entries[j])
	})

	for name, ext := range cfg.Extensions {
		if ext.Required && !registered[name] {
			return nil, fmt.Errorf("%w: required extension %q is not available", devflow.ErrExtensionDiscovery, name)
		}
	}

	return reg, nil
}

func extSource(cfg *config.Config, stack string) string {
	if ext, ok := cfg.Extensions[stack]; ok {
		return ext.Source
	}
	return "builtin"
}

func isRequired(cfg *config.Config, name string) bool {
	ext, ok := cfg.Extensions[name]
	return ok && ext.Required
}

// Extensions returns the registry entries in priority order.
func (r *Registry) Extensions() []Extension {
	return r.entries
}

// Resolve returns the extension that will handle ref: the first entry with
// an exact primary:selector capability, otherwise the first with a bare
// primary wildcard.
func (r *Registry) Resolve(ref devflow.CommandRef) (Extension, error) {
	for _, e := range r.entries {
		if matchesExact(e.Capabilities(), ref) {
			return e, nil
		}
	}
	for _, e := range r.entries {
		if matchesBare(e.Capabilities(), ref) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", devflow.ErrNoCapableExtension, ref.Canonical())
}

// BuildAction resolves ref and asks the chosen extension for its action.
// An extension declining a command it advertised is a protocol-level
// surprise and surfaces as NoCapableExtension.
func (r *Registry) BuildAction(ctx context.Context, ref devflow.CommandRef) (Extension, *Action, error) {
	ext, err := r.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	action, err := ext.BuildAction(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if action == nil {
		return nil, nil, fmt.Errorf("%w: %s declined %s", devflow.ErrNoCapableExtension, ext.Name(), ref.Canonical())
	}
	return ext, action, nil
}

// FingerprintInputs unions the declared fingerprint inputs of every
// registered extension, sorted and deduplicated.
func (r *Registry) FingerprintInputs() []string {
	seen := make(map[string]bool)
	var inputs []string
	for _, e := range r.entries {
		for _, in := range e.FingerprintInputs() {
			if !seen[in] {
				seen[in] = true
				inputs = append(inputs, in)
			}
		}
	}
	sort.Strings(inputs)
	return inputs
}

// CacheMounts unions the cache mounts of every registered extension in
// registry order.
func (r *Registry) CacheMounts() []Mount {
	type key struct{ host, container string }
	seen := make(map[key]bool)
	var mounts []Mount
	for _, e := range r.entries {
		for _, m := range e.CacheMounts() {
			k := key{m.Host, m.Container}
			if !seen[k] {
				seen[k] = true
				mounts = append(mounts, m)
			}
		}
	}
	return mounts
}

// EnvOverlay merges the environment overlays of every registered
// extension in registry order; later stacks win on key collisions.
func (r *Registry) EnvOverlay() map[string]string {
	env := make(map[string]string)
	for _, e := range r.entries {
		for k, v := range e.EnvOverlay() {
			env[k] = v
		}
	}
	return env
}
