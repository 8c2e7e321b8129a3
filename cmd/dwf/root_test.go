package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/softmentor/devflow"
)

func TestLocateConfigWalksAncestors(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "devflow.toml"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	cfgPath, repoRoot, err := locateConfig("")
	if err != nil {
		t.Fatalf("locateConfig error: %v", err)
	}
	if repoRoot != root {
		t.Errorf("repoRoot = %q, want %q", repoRoot, root)
	}
	if cfgPath != filepath.Join(root, "devflow.toml") {
		t.Errorf("cfgPath = %q", cfgPath)
	}
}

func TestLocateConfigMissingIsConfigError(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := locateConfig("")
	if !errors.Is(err, devflow.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
	if devflow.ExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", devflow.ExitCode(err))
	}
}

func TestLocateConfigExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath, repoRoot, err := locateConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfgPath != path || repoRoot != dir {
		t.Errorf("got (%q, %q), want (%q, %q)", cfgPath, repoRoot, path, dir)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(t.Context(), &options{}, []string{"frobnicate"})
	if !errors.Is(err, devflow.ErrUnknownPrimary) {
		t.Errorf("error = %v, want ErrUnknownPrimary", err)
	}
	if devflow.ExitCode(err) != 3 {
		t.Errorf("exit code = %d, want 3", devflow.ExitCode(err))
	}
}
