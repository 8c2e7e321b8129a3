package ci

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
	"github.com/softmentor/devflow/policy"
)

// Write renders the workflow and writes it to path, creating parent
// directories as needed.
func Write(cfg *config.Config, path string) error {
	data, err := Generate(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workflow directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}

// Check compares the on-disk workflow at path against the one the
// current config generates. Topology violations and byte-level
// divergence both surface as WorkflowDrift carrying a unified diff.
func Check(cfg *config.Config, path string) error {
	expected, err := Generate(cfg)
	if err != nil {
		return err
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &devflow.DriftError{Path: path, Diff: unifiedDiff(nil, expected)}
		}
		return fmt.Errorf("read workflow: %w", err)
	}

	if err := verifyTopology(cfg, onDisk, path); err != nil {
		if !errors.Is(err, devflow.ErrWorkflowDrift) {
			return err
		}
		return fmt.Errorf("%v: %w", err, &devflow.DriftError{Path: path, Diff: unifiedDiff(onDisk, expected)})
	}

	gotCanon, err := canonicalize(onDisk)
	if err != nil {
		return fmt.Errorf("%w: %s is not valid YAML: %v", devflow.ErrWorkflowDrift, path, err)
	}
	wantCanon, err := canonicalize(expected)
	if err != nil {
		return fmt.Errorf("canonicalize expected workflow: %w", err)
	}

	if !bytes.Equal(gotCanon, wantCanon) {
		return &devflow.DriftError{Path: path, Diff: unifiedDiff(gotCanon, wantCanon)}
	}
	return nil
}

// canonicalize decodes YAML and re-encodes it with 2-space indentation
// so that formatting-only differences do not count as drift.
func canonicalize(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// onDiskWorkflow is the subset of the document the topology check needs.
type onDiskWorkflow struct {
	Jobs map[string]struct {
		Needs []string `yaml:"needs"`
	} `yaml:"jobs"`
}

func verifyTopology(cfg *config.Config, onDisk []byte, path string) error {
	var doc onDiskWorkflow
	if err := yaml.Unmarshal(onDisk, &doc); err != nil {
		return fmt.Errorf("%w: %s is not valid YAML: %v", devflow.ErrWorkflowDrift, path, err)
	}

	if _, ok := doc.Jobs["prep"]; !ok {
		return fmt.Errorf("%w: %s has no prep job", devflow.ErrWorkflowDrift, path)
	}
	build, ok := doc.Jobs["build"]
	if !ok {
		return fmt.Errorf("%w: %s has no build job", devflow.ErrWorkflowDrift, path)
	}
	if !contains(build.Needs, "prep") {
		return fmt.Errorf("%w: build job does not depend on prep", devflow.ErrWorkflowDrift)
	}

	refs, err := policy.Expand(cfg, "pr")
	if err != nil {
		return err
	}
	for _, ref := range refs {
		key := fmt.Sprintf("check_%s_%s", ref.Primary, ref.Selector)
		check, ok := doc.Jobs[key]
		if !ok {
			return fmt.Errorf("%w: %s has no %s job", devflow.ErrWorkflowDrift, path, key)
		}
		if !contains(check.Needs, "build") {
			return fmt.Errorf("%w: %s job does not depend on build", devflow.ErrWorkflowDrift, key)
		}
	}
	return nil
}

func contains(set []string, want string) bool {
	for _, s := range set {
		if s == want {
			return true
		}
	}
	return false
}

func unifiedDiff(onDisk, expected []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(onDisk)),
		B:        difflib.SplitLines(string(expected)),
		FromFile: "on-disk",
		ToFile:   "expected",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}
