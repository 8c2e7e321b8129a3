package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/ci"
	"github.com/softmentor/devflow/config"
	"github.com/softmentor/devflow/extension"
	"github.com/softmentor/devflow/forge"
	"github.com/softmentor/devflow/policy"
	"github.com/softmentor/devflow/scaffold"
)

type options struct {
	configPath string
	force      bool
	stdout     bool
	ciOutput   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dwf <primary>[:<selector>] [args...]",
		Short: "Run repeatable dev and CI commands from devflow.toml",
		Long: `dwf dispatches canonical commands (fmt, lint, build, test, package,
check, release, ci, setup, init) to the extensions configured for the
repository's stack, on the host or inside the project's CI container.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to devflow.toml (default: nearest ancestor)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite existing files (init)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print generated output instead of writing files")
	cmd.Flags().StringVar(&opts.ciOutput, "ci-output", "", "workflow file path (default .github/workflows/ci.yml)")

	return cmd
}

func run(ctx context.Context, opts *options, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ref, err := devflow.ParseCommand(args[0])
	if err != nil {
		return err
	}

	if ref.Primary == devflow.PrimaryInit {
		return runInit(opts, ref, args[1:])
	}

	cfgPath, repoRoot, err := locateConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if ref.Primary == devflow.PrimaryCI {
		return runCI(ctx, opts, cfg, repoRoot, ref)
	}

	refs := []devflow.CommandRef{ref}
	if ref.Primary == devflow.PrimaryCheck {
		if refs, err = policy.Expand(cfg, ref.Selector); err != nil {
			return err
		}
	}

	registry, err := extension.NewRegistry(ctx, cfg, repoRoot)
	if err != nil {
		return err
	}

	// Profile entries run strictly in declared order; the first failure
	// aborts the rest.
	for _, r := range refs {
		if err := execute(ctx, cfg, registry, repoRoot, r); err != nil {
			if isDoctor(ref) && errorsIsNoCapable(err) {
				break
			}
			return err
		}
	}

	switch {
	case ref.Primary == devflow.PrimaryRelease && ref.Selector == "candidate":
		ensureReleaseCandidate(ctx, registry, repoRoot)
	case isDoctor(ref):
		printRecentRuns(repoRoot)
	}
	return nil
}

func isDoctor(ref devflow.CommandRef) bool {
	return ref.Primary == devflow.PrimarySetup && ref.Selector == "doctor"
}

// runInit scaffolds a new repository. The template comes from the
// selector (init:rust), the first argument (init rust), or marker-file
// detection.
func runInit(opts *options, ref devflow.CommandRef, args []string) error {
	template := ref.Selector
	if template == "" && len(args) > 0 {
		template = args[0]
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	so := scaffold.Options{
		RepoRoot: root,
		Template: template,
		CIPath:   opts.ciOutput,
		Force:    opts.force,
	}
	if opts.configPath != "" {
		so.ConfigPath = opts.configPath
	}
	if opts.stdout {
		so.Stdout = os.Stdout
	}
	return scaffold.Run(so)
}

func runCI(ctx context.Context, opts *options, cfg *config.Config, repoRoot string, ref devflow.CommandRef) error {
	path := opts.ciOutput
	if path == "" {
		path = filepath.Join(repoRoot, ci.DefaultWorkflowPath)
	}

	switch ref.Selector {
	case "generate":
		if opts.stdout {
			data, err := ci.Generate(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		return ci.Write(cfg, path)
	case "check":
		return ci.Check(cfg, path)
	case "plan":
		fmt.Print(ci.Plan(cfg))
		return nil
	case "status":
		return runCIStatus(ctx, repoRoot)
	}
	return fmt.Errorf("%w: %q for ci", devflow.ErrUnknownSelector, ref.Selector)
}

// runCIStatus reports the latest CI run for the current branch on the
// forge behind origin.
func runCIStatus(ctx context.Context, repoRoot string) error {
	remote, err := forge.DetectRemote(repoRoot)
	if err != nil {
		return err
	}
	token, err := forge.TokenFromEnv(remote.Kind)
	if err != nil {
		return err
	}
	client, err := forge.NewClient(remote, token)
	if err != nil {
		return err
	}

	branch, err := currentBranch(repoRoot)
	if err != nil {
		return err
	}
	status, err := client.LatestRunStatus(ctx, branch)
	if err != nil {
		return err
	}

	outcome := status.State
	if status.Conclusion != "" {
		outcome = status.Conclusion
	}
	fmt.Printf("%s: %s\n%s\n", branch, outcome, status.URL)
	return nil
}

// locateConfig finds devflow.toml: an explicit --config path wins,
// otherwise the nearest ancestor directory carrying one. The config's
// directory is the repository root.
func locateConfig(explicit string) (cfgPath, repoRoot string, err error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", "", err
		}
		return abs, filepath.Dir(abs), nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	for {
		candidate := filepath.Join(dir, config.DefaultPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", &devflow.ConfigError{
		Kind: devflow.ConfigMissing,
		Path: config.DefaultPath,
		Err:  fmt.Errorf("no %s in this directory or any ancestor", config.DefaultPath),
	}
}
