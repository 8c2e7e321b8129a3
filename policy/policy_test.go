package policy

import (
	"errors"
	"strings"
	"testing"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
)

func parseConfig(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("config.Parse error: %v", err)
	}
	return cfg
}

func TestExpandPreservesOrderAndDuplicates(t *testing.T) {
	cfg := parseConfig(t, `
[project]
name = "w"
stack = ["custom"]

[targets]
pr = ["fmt:check", "test:unit", "fmt:check"]
`)

	refs, err := Expand(cfg, "pr")
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	want := []string{"fmt:check", "test:unit", "fmt:check"}
	if len(refs) != len(want) {
		t.Fatalf("len = %d, want %d", len(refs), len(want))
	}
	for i, w := range want {
		if got := refs[i].Canonical(); got != w {
			t.Errorf("refs[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestExpandAppliesDefaultSelectors(t *testing.T) {
	cfg := parseConfig(t, `
[project]
name = "w"
stack = ["custom"]

[targets]
pr = ["fmt", "test"]
`)

	refs, err := Expand(cfg, "pr")
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if got := refs[0].Canonical(); got != "fmt:check" {
		t.Errorf("refs[0] = %q, want fmt:check", got)
	}
	if got := refs[1].Canonical(); got != "test:unit" {
		t.Errorf("refs[1] = %q, want test:unit", got)
	}
}

func TestExpandUnknownProfile(t *testing.T) {
	cfg := parseConfig(t, `
[project]
name = "w"
stack = ["custom"]

[targets]
pr = ["test:unit"]
`)

	_, err := Expand(cfg, "nightly")
	if !errors.Is(err, devflow.ErrUnknownSelector) {
		t.Errorf("error = %v, want ErrUnknownSelector", err)
	}
}

func TestPlanOrdering(t *testing.T) {
	cfg := parseConfig(t, `
[project]
name = "w"
stack = ["custom"]

[targets]
staging = ["test:smoke"]
main = ["test:unit"]
pr = ["fmt:check"]
`)

	got := Plan(cfg)
	want := []string{"pr", "main", "staging"}
	if len(got) != len(want) {
		t.Fatalf("Plan = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Plan[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
