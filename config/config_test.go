package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/softmentor/devflow"
)

const minimalConfig = `
[project]
name = "widget"
stack = ["rust"]

[targets]
pr = ["fmt:check", "test:unit"]

[extensions.rust]
source = "builtin"
`

func TestParseMinimal(t *testing.T) {
	cfg, err := Parse(strings.NewReader(minimalConfig))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if got := cfg.Project.Name; got != "widget" {
		t.Errorf("project.name = %q, want %q", got, "widget")
	}
	if got := cfg.Runtime.Profile; got != "auto" {
		t.Errorf("runtime.profile default = %q, want %q", got, "auto")
	}
	if got := len(cfg.Targets["pr"]); got != 2 {
		t.Errorf("len(targets.pr) = %d, want 2", got)
	}
	if cfg.Extensions["rust"].Required {
		t.Error("extensions.rust.required should default to false")
	}
}

func TestParseContainerEngineDefault(t *testing.T) {
	doc := `
[project]
name = "widget"
stack = ["rust"]

[runtime]
profile = "container"

[container]
image = "ghcr.io/acme/widget-ci"

[extensions.rust]
source = "builtin"
`
	cfg, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := cfg.Container.Engine; got != "auto" {
		t.Errorf("container.engine default = %q, want %q", got, "auto")
	}
}

func TestParseRejectsUnknownKey(t *testing.T) {
	doc := minimalConfig + "\n[project.metadata]\nteam = \"core\"\n"

	_, err := Parse(strings.NewReader(doc))
	if err == nil {
		t.Fatal("Parse should reject unknown key")
	}
	if !errors.Is(err, devflow.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}

	var cfgErr *devflow.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *devflow.ConfigError", err)
	}
	if cfgErr.Kind != devflow.ConfigUnknownKey {
		t.Errorf("kind = %q, want %q", cfgErr.Kind, devflow.ConfigUnknownKey)
	}

	// The same document without the extra key loads cleanly.
	if _, err := Parse(strings.NewReader(minimalConfig)); err != nil {
		t.Errorf("control document failed: %v", err)
	}
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		key  string
	}{
		{
			"missing project name",
			`
[project]
stack = ["rust"]
[extensions.rust]
source = "builtin"
`,
			"project.name",
		},
		{
			"unknown stack",
			`
[project]
name = "w"
stack = ["haskell"]
`,
			"project.stack",
		},
		{
			"bad profile",
			`
[project]
name = "w"
stack = ["custom"]
[runtime]
profile = "vm"
`,
			"runtime.profile",
		},
		{
			"container table required",
			`
[project]
name = "w"
stack = ["custom"]
[runtime]
profile = "container"
`,
			"container",
		},
		{
			"bad target command",
			`
[project]
name = "w"
stack = ["custom"]
[targets]
pr = ["deploy:prod"]
`,
			"targets.pr[0]",
		},
		{
			"stack without extension",
			`
[project]
name = "w"
stack = ["rust"]
`,
			"extensions.rust",
		},
		{
			"bad extension source",
			`
[project]
name = "w"
stack = ["rust"]
[extensions.rust]
source = "plugin"
`,
			"extensions.rust.source",
		},
		{
			"path source without path",
			`
[project]
name = "w"
stack = ["rust"]
[extensions.rust]
source = "path"
`,
			"extensions.rust.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			var cfgErr *devflow.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want *devflow.ConfigError", err)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("key = %q, want %q", cfgErr.Key, tt.key)
			}
		})
	}
}

func TestParseCustomStackNeedsNoExtension(t *testing.T) {
	doc := `
[project]
name = "w"
stack = ["custom"]

[targets]
pr = ["build:debug"]
`
	if _, err := Parse(strings.NewReader(doc)); err != nil {
		t.Fatalf("Parse error: %v", err)
	}
}

func TestParsePathSource(t *testing.T) {
	tmpDir := t.TempDir()
	extPath := filepath.Join(tmpDir, "devflow-ext-python")
	if err := os.WriteFile(extPath, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	doc := `
[project]
name = "w"
stack = ["python"]

[extensions.python]
source = "path"
path = "` + extPath + `"
`
	cfg, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := cfg.Extensions["python"].Path; got != extPath {
		t.Errorf("path = %q, want %q", got, extPath)
	}

	doc = strings.Replace(doc, extPath, filepath.Join(tmpDir, "missing"), 1)
	if _, err := Parse(strings.NewReader(doc)); err == nil {
		t.Error("Parse should reject nonexistent extension path")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "devflow.toml"))
	var cfgErr *devflow.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *devflow.ConfigError", err)
	}
	if cfgErr.Kind != devflow.ConfigMissing {
		t.Errorf("kind = %q, want %q", cfgErr.Kind, devflow.ConfigMissing)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devflow.toml")
	if err := os.WriteFile(path, []byte(minimalConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestProfilesOrder(t *testing.T) {
	doc := `
[project]
name = "w"
stack = ["custom"]

[targets]
staging = ["test:smoke"]
pr = ["fmt:check"]
alpha = ["lint:static"]
main = ["test:unit"]
`
	cfg, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	got := cfg.Profiles()
	want := []string{"pr", "main", "alpha", "staging"}
	if len(got) != len(want) {
		t.Fatalf("Profiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Profiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
