package extension

import (
	"context"

	"github.com/softmentor/devflow"
)

// builtin is a table-driven in-process extension. All three compiled-in
// stacks share this shape; only the tables differ.
type builtin struct {
	name    string
	caps    []string
	actions map[string]Action
	mounts  []Mount
	env     map[string]string
	inputs  []string
}

func (b *builtin) Name() string          { return b.name }
func (b *builtin) Origin() Origin        { return OriginBuiltin }
func (b *builtin) Capabilities() []string { return b.caps }
func (b *builtin) CacheMounts() []Mount  { return b.mounts }

func (b *builtin) EnvOverlay() map[string]string { return b.env }
func (b *builtin) FingerprintInputs() []string   { return b.inputs }

func (b *builtin) BuildAction(_ context.Context, ref devflow.CommandRef) (*Action, error) {
	action, ok := b.actions[ref.Canonical()]
	if !ok {
		return nil, nil
	}
	out := action
	out.Args = append([]string(nil), action.Args...)
	return &out, nil
}

// Builtins returns the compiled-in extensions keyed by stack name.
func Builtins() map[string]Extension {
	return map[string]Extension{
		"rust": newRustExtension(),
		"node": newNodeExtension(),
		"tsc":  newTscExtension(),
	}
}

func cargo(args ...string) Action { return Action{Program: "cargo", Args: args} }
func npm(args ...string) Action   { return Action{Program: "npm", Args: args} }
func npx(args ...string) Action   { return Action{Program: "npx", Args: args} }

func newRustExtension() Extension {
	return &builtin{
		name: "rust",
		caps: []string{
			"setup",
			"fmt:check", "fmt:fix",
			"lint:static",
			"build:debug", "build:release",
			"test:unit", "test:integration", "test:smoke",
			"package:artifact",
			"release:candidate",
		},
		actions: map[string]Action{
			"setup:toolchain":  {Program: "rustup", Args: []string{"show"}},
			"setup:deps":       cargo("fetch"),
			"setup:doctor":     cargo("--version"),
			"fmt:check":        cargo("fmt", "--all", "--", "--check"),
			"fmt:fix":          cargo("fmt", "--all"),
			"lint:static":      cargo("clippy", "--all-targets", "--all-features", "--", "-D", "warnings"),
			"build:debug":      cargo("build"),
			"build:release":    cargo("build", "--release"),
			"test:unit":        cargo("nextest", "run", "--lib", "--bins"),
			"test:integration": cargo("test", "--tests"),
			"test:smoke":       cargo("test", "smoke"),
			"package:artifact": cargo("build", "--release"),
			"release:candidate": cargo("build", "--release"),
		},
		mounts: []Mount{
			{Host: "rust/cargo", Container: "/workspace/.cargo-cache", Mode: "rw"},
			{Host: "rust/target", Container: "/workspace/target/ci", Mode: "rw"},
		},
		env: map[string]string{
			"CARGO_HOME":       "/workspace/.cargo-cache",
			"CARGO_TARGET_DIR": "/workspace/target/ci",
			"SCCACHE_DIR":      "/workspace/.cargo-cache/sccache",
			"RUSTC_WRAPPER":    "sccache",
		},
		inputs: []string{"Cargo.lock", "rust-toolchain.toml", "Cargo.toml"},
	}
}

func newNodeExtension() Extension {
	return &builtin{
		name: "node",
		caps: []string{
			"setup",
			"fmt:check", "fmt:fix",
			"lint:static",
			"build:debug", "build:release",
			"test:unit", "test:integration", "test:smoke",
			"package:artifact",
		},
		actions: map[string]Action{
			"setup:deps":       npm("ci"),
			"setup:doctor":     npm("--version"),
			"fmt:check":        npm("run", "fmt:check"),
			"fmt:fix":          npm("run", "fmt:fix"),
			"lint:static":      npm("run", "lint"),
			"build:debug":      npm("run", "build"),
			"build:release":    npm("run", "build"),
			"test:unit":        npm("run", "test:unit"),
			"test:integration": npm("run", "test:integration"),
			"test:smoke":       npm("run", "test:smoke"),
			"package:artifact": npm("pack", "--dry-run"),
		},
		mounts: []Mount{
			{Host: "node/npm", Container: "/root/.npm", Mode: "rw"},
		},
		inputs: []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "package.json"},
	}
}

func newTscExtension() Extension {
	return &builtin{
		name: "tsc",
		caps: []string{
			"setup",
			"fmt:check", "fmt:fix",
			"lint:static",
			"build:debug", "build:release",
			"test:unit", "test:integration",
			"package:artifact",
		},
		actions: map[string]Action{
			"setup:deps":       npm("ci"),
			"setup:doctor":     npx("tsc", "--version"),
			"fmt:check":        npm("run", "fmt:check"),
			"fmt:fix":          npm("run", "fmt:fix"),
			"lint:static":      npm("run", "lint"),
			"build:debug":      npx("tsc", "--noEmit"),
			"build:release":    npx("tsc"),
			"test:unit":        npm("run", "test:unit"),
			"test:integration": npm("run", "test:integration"),
			"package:artifact": npm("pack", "--dry-run"),
		},
		mounts: []Mount{
			{Host: "node/npm", Container: "/root/.npm", Mode: "rw"},
		},
		inputs: []string{"tsconfig.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "package.json"},
	}
}
