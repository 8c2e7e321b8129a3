// Package extension resolves canonical commands into concrete execution
// actions. Extensions come in three origins: builtins compiled into the
// binary, subprocess extensions speaking a JSON protocol over standard
// streams, and the custom delegate that forwards to just or make.
package extension

import (
	"context"
	"strings"

	"github.com/softmentor/devflow"
)

// Origin identifies how an extension is hosted.
type Origin string

const (
	OriginBuiltin    Origin = "builtin"
	OriginSubprocess Origin = "subprocess"
	OriginCustom     Origin = "custom-delegate"
)

// Mount maps a host path into the container. Cache mount host paths are
// relative to DWF_CACHE_ROOT until the planner anchors them.
type Mount struct {
	Host      string `json:"host"`
	Container string `json:"container"`
	Mode      string `json:"mode"` // ro | rw
}

// Action is the resolved process an extension wants run for a command.
// Program is an executable name or absolute path, never a shell string.
type Action struct {
	Program     string            `json:"program"`
	Args        []string          `json:"args"`
	Env         map[string]string `json:"env,omitempty"`
	Cwd         string            `json:"cwd,omitempty"`
	Mounts      []Mount           `json:"mounts,omitempty"`
	RequiresTTY bool              `json:"requires_tty,omitempty"`
}

// Extension turns a CommandRef into an Action. Implementations also
// declare the container cache mounts, environment overlay, and
// fingerprint inputs for their stack; non-builtin origins typically
// return nothing for those.
type Extension interface {
	Name() string
	Origin() Origin

	// Capabilities returns the command patterns this extension claims:
	// fully qualified "primary:selector" or bare "primary".
	Capabilities() []string

	// BuildAction resolves a command. A nil Action with nil error means
	// the extension declines the command.
	BuildAction(ctx context.Context, ref devflow.CommandRef) (*Action, error)

	CacheMounts() []Mount
	EnvOverlay() map[string]string
	FingerprintInputs() []string
}

// matchesExact reports whether caps contains the fully qualified form.
func matchesExact(caps []string, ref devflow.CommandRef) bool {
	qualified := string(ref.Primary) + ":" + ref.Selector
	for _, c := range caps {
		if c == qualified {
			return true
		}
	}
	return false
}

// matchesBare reports whether caps contains the bare primary wildcard.
func matchesBare(caps []string, ref devflow.CommandRef) bool {
	for _, c := range caps {
		if !strings.Contains(c, ":") && c == string(ref.Primary) {
			return true
		}
	}
	return false
}
