// Package devflow defines the command model shared by every part of the
// dwf tool: canonical primaries, their selector sets, legacy aliases, and
// the stable error kinds that map to process exit codes.
//
// The package is organized into subpackages by domain:
//
//   - config: devflow.toml loading and validation
//   - policy: target profile expansion and CI plan ordering
//   - extension: builtin and subprocess extensions, registry, discovery
//   - runtime: runtime profile resolution and fingerprinting
//   - runner: execution planning, spawning, signal forwarding
//   - ci: workflow generation and drift checking
//   - scaffold: project initialization templates
//   - forge: GitHub and GitLab remote integration
//   - git: read-only repository state queries
//   - history: per-invocation run ledger
//
// # Quick Start
//
//	import (
//	    "github.com/softmentor/devflow"
//	    "github.com/softmentor/devflow/config"
//	)
//
//	ref, err := devflow.ParseCommand("test:unit")
//	if err != nil {
//	    return err
//	}
//	cfg, err := config.Load("devflow.toml")
//
// See individual package documentation for detailed usage.
package devflow
