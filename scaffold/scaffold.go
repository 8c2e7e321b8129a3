// Package scaffold bootstraps a repository for devflow: a starter
// devflow.toml matched to the detected or requested stack, plus the
// generated CI workflow.
package scaffold

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/ci"
	"github.com/softmentor/devflow/config"
)

// Templates lists the supported init templates in display order.
var Templates = []string{"rust", "node", "tsc", "kotlin"}

// Options parameterize one init run.
type Options struct {
	RepoRoot   string
	Template   string    // empty means detect from marker files
	ConfigPath string    // default <RepoRoot>/devflow.toml
	CIPath     string    // default <RepoRoot>/.github/workflows/ci.yml
	Force      bool      // overwrite existing files
	Stdout     io.Writer // when set, the workflow is printed instead of written
}

// Run writes the starter config and workflow. Existing files are left
// untouched without Force; that is a ScaffoldExists error.
func Run(opts Options) error {
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(opts.RepoRoot, config.DefaultPath)
	}
	if opts.CIPath == "" {
		opts.CIPath = filepath.Join(opts.RepoRoot, ci.DefaultWorkflowPath)
	}

	template := opts.Template
	if template == "" {
		detected, err := Detect(opts.RepoRoot)
		if err != nil {
			return err
		}
		template = detected
	}

	doc, err := renderConfig(template, projectName(opts.RepoRoot))
	if err != nil {
		return err
	}
	if err := writeIfAbsent(opts.ConfigPath, []byte(doc), opts.Force); err != nil {
		return err
	}

	cfg, err := config.Parse(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("render starter config: %w", err)
	}

	if opts.Stdout != nil {
		data, err := ci.Generate(cfg)
		if err != nil {
			return err
		}
		_, err = opts.Stdout.Write(data)
		return err
	}

	if !opts.Force {
		if _, err := os.Stat(opts.CIPath); err == nil {
			return fmt.Errorf("%w: %s", devflow.ErrScaffoldExists, opts.CIPath)
		}
	}
	return ci.Write(cfg, opts.CIPath)
}

// Detect picks a template from marker files: Cargo.toml wins over
// tsconfig.json, which wins over package.json.
func Detect(repoRoot string) (string, error) {
	markers := []struct {
		file     string
		template string
	}{
		{"Cargo.toml", "rust"},
		{"tsconfig.json", "tsc"},
		{"package.json", "node"},
	}
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(repoRoot, m.file)); err == nil {
			return m.template, nil
		}
	}
	return "", fmt.Errorf("no project marker found; run dwf init <%s>", strings.Join(Templates, "|"))
}

func projectName(repoRoot string) string {
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "devflow-project"
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return "devflow-project"
	}
	return name
}

func renderConfig(template, name string) (string, error) {
	doc, ok := templates[template]
	if !ok {
		if template == "typescript" {
			doc = templates["tsc"]
		} else {
			return "", fmt.Errorf("%w: unknown init template %q (supported: %s)",
				devflow.ErrUnknownSelector, template, strings.Join(Templates, ", "))
		}
	}
	return strings.ReplaceAll(doc, "{{name}}", name), nil
}

func writeIfAbsent(path string, content []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", devflow.ErrScaffoldExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var templates = map[string]string{
	"rust": `[project]
name = "{{name}}"
stack = ["rust"]

[runtime]
profile = "auto"

[targets]
pr = ["fmt:check", "lint:static", "build:debug", "test:unit"]
main = ["fmt:check", "lint:static", "test:unit", "test:integration"]
release = ["build:release", "package:artifact"]

[extensions.rust]
source = "builtin"
`,
	"node": `[project]
name = "{{name}}"
stack = ["node"]

[runtime]
profile = "auto"

[targets]
pr = ["fmt:check", "lint:static", "test:unit"]
main = ["fmt:check", "lint:static", "test:unit", "test:integration"]
release = ["build:release", "package:artifact"]

[extensions.node]
source = "builtin"
`,
	"tsc": `[project]
name = "{{name}}"
stack = ["tsc"]

[runtime]
profile = "auto"

[targets]
pr = ["fmt:check", "lint:static", "build:debug", "test:unit"]
main = ["fmt:check", "lint:static", "test:unit", "test:integration"]
release = ["build:release", "package:artifact"]

[extensions.tsc]
source = "builtin"
`,
	"kotlin": `[project]
name = "{{name}}"
stack = ["custom"]

[runtime]
profile = "host"

[targets]
pr = ["build:debug", "test:unit"]
main = ["build:debug", "test:unit", "test:integration"]
release = ["build:release", "package:artifact"]
`,
}
