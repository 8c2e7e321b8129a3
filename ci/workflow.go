package ci

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
	"github.com/softmentor/devflow/policy"
)

// DefaultWorkflowPath is where ci:generate writes unless --ci-output
// overrides it.
const DefaultWorkflowPath = ".github/workflows/ci.yml"

const (
	runnerImage    = "ubuntu-latest"
	checkoutAction = "actions/checkout@v4"
	trivyAction    = "aquasecurity/trivy-action@0.24.0"
)

type step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

type job struct {
	Name   string   `yaml:"name"`
	RunsOn string   `yaml:"runs-on"`
	Needs  []string `yaml:"needs,omitempty"`
	Steps  []step   `yaml:"steps"`
}

type namedJob struct {
	key string
	job job
}

type workflow struct {
	Name string     `yaml:"name"`
	On   []string   `yaml:"on,flow"`
	Jobs *yaml.Node `yaml:"jobs"`
}

// Generate renders the workflow YAML for the config's pr profile: a
// prep job (checkout, toolchain, scan), a cache-warming build job, and
// one check job per targets.pr entry depending on build.
func Generate(cfg *config.Config) ([]byte, error) {
	refs, err := policy.Expand(cfg, "pr")
	if err != nil {
		return nil, err
	}

	jobs := []namedJob{
		{key: "prep", job: prepJob()},
		{key: "build", job: buildJob()},
	}
	titler := cases.Title(language.English)
	for _, ref := range refs {
		key := fmt.Sprintf("check_%s_%s", ref.Primary, ref.Selector)
		jobs = append(jobs, namedJob{key: key, job: checkJob(titler, ref)})
	}

	node, err := jobsNode(jobs)
	if err != nil {
		return nil, err
	}

	doc := workflow{
		Name: cfg.Project.Name + " ci",
		On:   []string{"pull_request", "push"},
		Jobs: node,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	return buf.Bytes(), nil
}

func prepJob() job {
	return job{
		Name:   "Prep",
		RunsOn: runnerImage,
		Steps: []step{
			{Name: "Checkout", Uses: checkoutAction},
			{Name: "Toolchain", Run: "dwf setup:toolchain"},
			{Name: "Scan", Uses: trivyAction, With: map[string]string{
				"scan-type": "fs",
				"exit-code": "1",
			}},
		},
	}
}

func buildJob() job {
	return job{
		Name:   "Build",
		RunsOn: runnerImage,
		Needs:  []string{"prep"},
		Steps: []step{
			{Name: "Checkout", Uses: checkoutAction},
			{Name: "Warm cache", Run: "dwf setup:deps"},
		},
	}
}

func checkJob(titler cases.Caser, ref devflow.CommandRef) job {
	display := titler.String(string(ref.Primary) + " " + ref.Selector)
	return job{
		Name:   "Check " + display,
		RunsOn: runnerImage,
		Needs:  []string{"build"},
		Steps: []step{
			{Name: "Checkout", Uses: checkoutAction},
			{Name: display, Run: "dwf " + ref.Canonical()},
		},
	}
}

// jobsNode preserves the prep, build, check ordering that a plain map
// would lose.
func jobsNode(jobs []namedJob) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, j := range jobs {
		var value yaml.Node
		if err := value.Encode(j.job); err != nil {
			return nil, fmt.Errorf("encode job %s: %w", j.key, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: j.key}
		node.Content = append(node.Content, key, &value)
	}
	return node, nil
}

// Plan returns the profile names ci:plan prints, one per line.
func Plan(cfg *config.Config) string {
	return strings.Join(policy.Plan(cfg), "\n") + "\n"
}
