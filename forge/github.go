package forge

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHub implements Client over the GitHub REST API.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHub creates a GitHub client for the remote using a personal
// access token.
func NewGitHub(token string, remote Remote) (*GitHub, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHub{
		client: github.NewClient(tc),
		owner:  remote.Owner,
		repo:   remote.Repo,
	}, nil
}

// LatestRunStatus returns the most recent workflow run on branch.
func (g *GitHub) LatestRunStatus(ctx context.Context, branch string) (*Status, error) {
	runs, _, err := g.client.Actions.ListRepositoryWorkflowRuns(ctx, g.owner, g.repo,
		&github.ListWorkflowRunsOptions{
			Branch:      branch,
			ListOptions: github.ListOptions{PerPage: 1},
		})
	if err != nil {
		return nil, fmt.Errorf("list workflow runs: %w", err)
	}
	if len(runs.WorkflowRuns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRuns, branch)
	}

	run := runs.WorkflowRuns[0]
	return &Status{
		ID:         run.GetID(),
		Branch:     branch,
		State:      run.GetStatus(),
		Conclusion: run.GetConclusion(),
		URL:        run.GetHTMLURL(),
	}, nil
}

// EnsureDraftRelease creates a draft release for tag unless one with
// that tag already exists. Drafts are matched by listing because
// GetReleaseByTag only sees published releases.
func (g *GitHub) EnsureDraftRelease(ctx context.Context, tag, name string) (bool, error) {
	releases, _, err := g.client.Repositories.ListReleases(ctx, g.owner, g.repo,
		&github.ListOptions{PerPage: 100})
	if err != nil {
		return false, fmt.Errorf("list releases: %w", err)
	}
	for _, rel := range releases {
		if rel.GetTagName() == tag {
			return false, nil
		}
	}

	_, _, err = g.client.Repositories.CreateRelease(ctx, g.owner, g.repo, &github.RepositoryRelease{
		TagName: github.String(tag),
		Name:    github.String(name),
		Draft:   github.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("create draft release: %w", err)
	}
	return true, nil
}
