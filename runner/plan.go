package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/extension"
	"github.com/softmentor/devflow/runtime"
)

// Containerized execution layout.
const (
	ContainerWorkspace = "/workspace"
	ContainerDwfBin    = "/usr/local/bin/dwf"
	ContainerUser      = "dwfuser"
)

// RunIDLength is the nanoid length used to tag each planned execution.
const RunIDLength = 12

// Plan is the fully-formed process for one command.
type Plan struct {
	RunID   string
	Command string // canonical primary:selector form
	Program string
	Args    []string
	Env     []string // KEY=VALUE pairs overlaid on the inherited environment
	Dir     string
}

// Build assembles the process for ref. cacheMounts is the union of the
// registry's extension cache mounts; action mounts declared by the
// resolving extension are appended after them.
func Build(ref devflow.CommandRef, rc *runtime.Context, action *extension.Action, cacheMounts []extension.Mount) (*Plan, error) {
	id, err := gonanoid.New(RunIDLength)
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	env := mergeEnv(rc.EnvOverlay, action.Env)
	dir := action.Cwd
	if dir == "" {
		dir = rc.RepoRoot
	}

	plan := &Plan{
		RunID:   id,
		Command: ref.Canonical(),
		Env:     envPairs(env),
		Dir:     dir,
	}

	if rc.Profile != runtime.ProfileContainer {
		plan.Program = action.Program
		plan.Args = action.Args
		return plan, nil
	}

	argv := []string{"run", "--rm", "--init", "-u", ContainerUser, "-w", ContainerWorkspace}

	for _, m := range dedupMounts(append(append([]extension.Mount(nil), cacheMounts...), action.Mounts...)) {
		host := filepath.Join(rc.CacheRoot, m.Host)
		if err := os.MkdirAll(host, 0o755); err != nil {
			slog.Warn("cannot create cache directory", "path", host, "error", err)
		}
		spec := host + ":" + m.Container
		if m.Mode != "" {
			spec += ":" + m.Mode
		}
		argv = append(argv, "-v", spec)
	}

	if exe, err := os.Executable(); err == nil {
		argv = append(argv, "-v", exe+":"+ContainerDwfBin+":ro")
	} else {
		slog.Warn("cannot resolve own binary, skipping parity mount", "error", err)
	}

	argv = append(argv, "-v", rc.RepoRoot+":"+ContainerWorkspace)

	for _, k := range sortedKeys(env) {
		argv = append(argv, "-e", k+"="+env[k])
	}

	argv = append(argv, rc.ImageRef, action.Program)
	argv = append(argv, action.Args...)

	plan.Program = rc.Engine
	plan.Args = argv
	return plan, nil
}

func mergeEnv(overlay, actionEnv map[string]string) map[string]string {
	env := make(map[string]string, len(overlay)+len(actionEnv))
	for k, v := range overlay {
		env[k] = v
	}
	for k, v := range actionEnv {
		env[k] = v
	}
	return env
}

func envPairs(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for _, k := range sortedKeys(env) {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupMounts(mounts []extension.Mount) []extension.Mount {
	type key struct{ host, container string }
	seen := make(map[key]bool)
	var out []extension.Mount
	for _, m := range mounts {
		k := key{m.Host, m.Container}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}
