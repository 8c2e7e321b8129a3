package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/softmentor/devflow"
	"github.com/softmentor/devflow/config"
	"github.com/softmentor/devflow/extension"
	"github.com/softmentor/devflow/forge"
	"github.com/softmentor/devflow/git"
	"github.com/softmentor/devflow/history"
	"github.com/softmentor/devflow/runner"
	"github.com/softmentor/devflow/runtime"
)

// execute resolves the runtime for one command, builds its action and
// plan, runs it, and records the outcome in the run ledger.
func execute(ctx context.Context, cfg *config.Config, registry *extension.Registry, repoRoot string, ref devflow.CommandRef) error {
	rc, err := runtime.New(ctx, cfg, repoRoot, registry.FingerprintInputs(), registry.EnvOverlay())
	if err != nil {
		return err
	}

	_, action, err := registry.BuildAction(ctx, ref)
	if err != nil {
		return err
	}

	plan, err := runner.Build(ref, rc, action, registry.CacheMounts())
	if err != nil {
		return err
	}

	start := time.Now()
	runErr := runner.New().Run(plan)
	recordRun(rc, plan, start, runErr)
	return runErr
}

// recordRun appends one row to the history ledger. Ledger trouble is a
// warning, never a run failure.
func recordRun(rc *runtime.Context, plan *runner.Plan, start time.Time, runErr error) {
	store, err := history.OpenAt(rc.CacheRoot)
	if err != nil {
		slog.Warn("history ledger unavailable", "error", err)
		return
	}
	defer store.Close()

	entry := history.Entry{
		RunID:       plan.RunID,
		Command:     plan.Command,
		Profile:     rc.Profile,
		Fingerprint: rc.Fingerprint,
		ExitCode:    devflow.ExitCode(runErr),
		Duration:    time.Since(start),
		StartedAt:   start,
	}
	if err := store.Record(entry); err != nil {
		slog.Warn("history record failed", "error", err, "run", plan.RunID)
	}
}

// printRecentRuns shows the ledger tail for setup:doctor.
func printRecentRuns(repoRoot string) {
	store, err := history.OpenAt(runtime.CacheRoot(repoRoot))
	if err != nil {
		slog.Warn("history ledger unavailable", "error", err)
		return
	}
	defer store.Close()

	entries, err := store.Last(5)
	if err != nil {
		slog.Warn("history read failed", "error", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("no recorded runs")
		return
	}

	fmt.Println("recent runs:")
	for _, e := range entries {
		fmt.Printf("  %s  %-20s %-9s exit %d  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Command, e.Profile, e.ExitCode, e.Duration.Round(time.Millisecond))
	}
}

// ensureReleaseCandidate marks the current tree as a release candidate:
// a draft release tagged rc-<fingerprint prefix> on the GitHub remote.
// Anything short of a GitHub remote with a token skips the marker.
func ensureReleaseCandidate(ctx context.Context, registry *extension.Registry, repoRoot string) {
	remote, err := forge.DetectRemote(repoRoot)
	if err != nil || remote.Kind != forge.KindGitHub {
		slog.Info("skipping release candidate marker", "reason", "origin is not a GitHub remote")
		return
	}
	token, err := forge.TokenFromEnv(remote.Kind)
	if err != nil {
		slog.Info("skipping release candidate marker", "reason", "no forge token")
		return
	}

	inputs := registry.FingerprintInputs()
	if _, err := os.Stat(filepath.Join(repoRoot, runtime.SharedFingerprintInput)); err == nil {
		inputs = append(inputs, runtime.SharedFingerprintInput)
	}
	fingerprint, err := runtime.Fingerprint(repoRoot, inputs)
	if err != nil {
		slog.Warn("release candidate fingerprint failed", "error", err)
		return
	}

	client, err := forge.NewClient(remote, token)
	if err != nil {
		slog.Warn("forge client failed", "error", err)
		return
	}

	tag := "rc-" + fingerprint[:12]
	created, err := client.EnsureDraftRelease(ctx, tag, tag)
	if err != nil {
		slog.Warn("draft release failed", "tag", tag, "error", err)
		return
	}
	if created {
		fmt.Printf("release candidate %s created\n", tag)
	} else {
		fmt.Printf("release candidate %s already exists\n", tag)
	}
}

func currentBranch(repoRoot string) (string, error) {
	g, err := git.NewContext(repoRoot)
	if err != nil {
		return "", err
	}
	return g.CurrentBranch()
}

func errorsIsNoCapable(err error) bool {
	return errors.Is(err, devflow.ErrNoCapableExtension)
}
