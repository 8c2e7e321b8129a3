package extension

import (
	"context"
	"strings"
	"testing"

	"github.com/softmentor/devflow"
)

func mustParse(t *testing.T, token string) devflow.CommandRef {
	t.Helper()
	ref, err := devflow.ParseCommand(token)
	if err != nil {
		t.Fatalf("ParseCommand(%q): %v", token, err)
	}
	return ref
}

func TestRustActions(t *testing.T) {
	ext := Builtins()["rust"]

	tests := []struct {
		command string
		want    string
	}{
		{"setup:doctor", "cargo --version"},
		{"setup:toolchain", "rustup show"},
		{"setup:deps", "cargo fetch"},
		{"fmt:check", "cargo fmt --all -- --check"},
		{"fmt:fix", "cargo fmt --all"},
		{"lint:static", "cargo clippy --all-targets --all-features -- -D warnings"},
		{"build:debug", "cargo build"},
		{"build:release", "cargo build --release"},
		{"test:unit", "cargo nextest run --lib --bins"},
		{"test:integration", "cargo test --tests"},
		{"test:smoke", "cargo test smoke"},
		{"package:artifact", "cargo build --release"},
	}

	for _, tt := range tests {
		action, err := ext.BuildAction(context.Background(), mustParse(t, tt.command))
		if err != nil {
			t.Fatalf("BuildAction(%s): %v", tt.command, err)
		}
		if action == nil {
			t.Fatalf("BuildAction(%s) declined", tt.command)
		}
		got := action.Program + " " + strings.Join(action.Args, " ")
		if got != tt.want {
			t.Errorf("BuildAction(%s) = %q, want %q", tt.command, got, tt.want)
		}
	}
}

func TestNodeActions(t *testing.T) {
	ext := Builtins()["node"]

	tests := []struct {
		command string
		want    string
	}{
		{"setup:deps", "npm ci"},
		{"lint:static", "npm run lint"},
		{"test:unit", "npm run test:unit"},
		{"package:artifact", "npm pack --dry-run"},
	}

	for _, tt := range tests {
		action, err := ext.BuildAction(context.Background(), mustParse(t, tt.command))
		if err != nil {
			t.Fatalf("BuildAction(%s): %v", tt.command, err)
		}
		got := action.Program + " " + strings.Join(action.Args, " ")
		if got != tt.want {
			t.Errorf("BuildAction(%s) = %q, want %q", tt.command, got, tt.want)
		}
	}
}

func TestBuiltinDeclinesUnknownAction(t *testing.T) {
	node := Builtins()["node"]

	action, err := node.BuildAction(context.Background(), mustParse(t, "setup:toolchain"))
	if err != nil {
		t.Fatalf("BuildAction error: %v", err)
	}
	if action != nil {
		t.Errorf("node should decline setup:toolchain, got %v", action)
	}
}

func TestBuiltinFingerprintInputs(t *testing.T) {
	rust := Builtins()["rust"]
	want := []string{"Cargo.lock", "rust-toolchain.toml", "Cargo.toml"}
	got := rust.FingerprintInputs()
	if len(got) != len(want) {
		t.Fatalf("FingerprintInputs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FingerprintInputs[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	tsc := Builtins()["tsc"]
	if tsc.FingerprintInputs()[0] != "tsconfig.json" {
		t.Errorf("tsc inputs should start with tsconfig.json, got %v", tsc.FingerprintInputs())
	}
}

func TestBuiltinCacheMountsAndEnv(t *testing.T) {
	rust := Builtins()["rust"]

	mounts := rust.CacheMounts()
	if len(mounts) != 2 {
		t.Fatalf("len(mounts) = %d, want 2", len(mounts))
	}
	if mounts[0].Host != "rust/cargo" || mounts[0].Container != "/workspace/.cargo-cache" {
		t.Errorf("mounts[0] = %+v", mounts[0])
	}

	env := rust.EnvOverlay()
	if env["CARGO_HOME"] != "/workspace/.cargo-cache" {
		t.Errorf("CARGO_HOME = %q", env["CARGO_HOME"])
	}
	if env["RUSTC_WRAPPER"] != "sccache" {
		t.Errorf("RUSTC_WRAPPER = %q", env["RUSTC_WRAPPER"])
	}
}
