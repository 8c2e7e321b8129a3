package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
)

// Profile values after resolution. The configured "auto" never survives
// Resolve.
const (
	ProfileHost      = "host"
	ProfileContainer = "container"
)

// HealthProbeTimeout bounds the `<engine> info` daemon check.
const HealthProbeTimeout = 5 * time.Second

// Runtime is the resolved execution mode for one invocation.
type Runtime struct {
	Profile string
	Engine  string // container engine binary, empty under the host profile
}

// Resolver decides between host and container execution for a loaded
// config.
type Resolver struct {
	lookPath func(string) (string, error)
	healthy  func(ctx context.Context, engine string) bool
}

func NewResolver() *Resolver {
	return &Resolver{lookPath: exec.LookPath, healthy: engineHealthy}
}

// Resolve applies runtime.profile. "auto" selects container when an
// engine is usable and falls back to host otherwise. An explicitly
// named engine that is missing from PATH never falls back; under the
// container and auto profiles that is an EngineMissing error. The host
// profile does not look at the engine.
func (r *Resolver) Resolve(ctx context.Context, cfg *config.Config) (Runtime, error) {
	if os.Getenv("IS_CONTAINER") == "true" {
		slog.Debug("already inside a container, using host profile")
		return Runtime{Profile: ProfileHost}, nil
	}

	want := ""
	if cfg.Container != nil {
		want = cfg.Container.Engine
	}

	switch cfg.Runtime.Profile {
	case "host":
		return Runtime{Profile: ProfileHost}, nil
	case "container":
		engine, err := r.resolveEngine(ctx, want)
		if err != nil {
			return Runtime{}, err
		}
		return Runtime{Profile: ProfileContainer, Engine: engine}, nil
	}

	engine, err := r.resolveEngine(ctx, want)
	if err != nil {
		if namedEngine(want) {
			return Runtime{}, err
		}
		slog.Debug("no container engine available, using host profile")
		return Runtime{Profile: ProfileHost}, nil
	}
	return Runtime{Profile: ProfileContainer, Engine: engine}, nil
}

func namedEngine(engine string) bool {
	return engine == "docker" || engine == "podman"
}

// resolveEngine picks the engine binary. A named engine must be on PATH.
// For "auto" a daemon that answers `info` beats one that is merely
// installed; podman is preferred over docker at equal standing.
func (r *Resolver) resolveEngine(ctx context.Context, want string) (string, error) {
	if namedEngine(want) {
		if _, err := r.lookPath(want); err != nil {
			return "", fmt.Errorf("%w: %s is not on PATH", devflow.ErrEngineMissing, want)
		}
		return want, nil
	}

	var installed []string
	for _, engine := range []string{"podman", "docker"} {
		if _, err := r.lookPath(engine); err == nil {
			installed = append(installed, engine)
		}
	}
	for _, engine := range installed {
		if r.healthy(ctx, engine) {
			return engine, nil
		}
	}
	if len(installed) > 0 {
		slog.Debug("no engine daemon responded, using first installed", "engine", installed[0])
		return installed[0], nil
	}
	return "", fmt.Errorf("%w: neither podman nor docker is on PATH", devflow.ErrEngineMissing)
}

func engineHealthy(ctx context.Context, engine string) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, engine, "info")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run() == nil
}
