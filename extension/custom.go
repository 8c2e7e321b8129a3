package extension

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/softmentor/devflow"
)

// Delegate is the synthetic extension for the custom stack. It forwards
// any primary:selector to a justfile or Makefile recipe named
// <primary>-<selector>.
type Delegate struct {
	repoRoot string
	lookPath func(string) (string, error)
}

// NewDelegate creates the custom delegate rooted at the repository.
func NewDelegate(repoRoot string) *Delegate {
	return &Delegate{repoRoot: repoRoot, lookPath: exec.LookPath}
}

func (d *Delegate) Name() string   { return "custom" }
func (d *Delegate) Origin() Origin { return OriginCustom }

// Capabilities claims every primary bare; the custom stack always matches.
func (d *Delegate) Capabilities() []string {
	caps := make([]string, 0, len(devflow.Primaries))
	for _, p := range devflow.Primaries {
		caps = append(caps, string(p))
	}
	return caps
}

func (d *Delegate) CacheMounts() []Mount          { return nil }
func (d *Delegate) EnvOverlay() map[string]string { return nil }
func (d *Delegate) FingerprintInputs() []string   { return nil }

func (d *Delegate) BuildAction(_ context.Context, ref devflow.CommandRef) (*Action, error) {
	recipe := string(ref.Primary)
	if ref.Selector != "" {
		recipe += "-" + ref.Selector
	}

	if d.fileExists("justfile") {
		if _, err := d.lookPath("just"); err == nil {
			return &Action{Program: "just", Args: []string{recipe}}, nil
		}
	}
	if d.fileExists("Makefile") {
		return &Action{Program: "make", Args: []string{recipe}}, nil
	}
	return nil, fmt.Errorf("%w: custom stack needs a justfile or Makefile for %s", devflow.ErrNoCapableExtension, ref.Canonical())
}

func (d *Delegate) fileExists(name string) bool {
	_, err := os.Stat(filepath.Join(d.repoRoot, name))
	return err == nil
}
