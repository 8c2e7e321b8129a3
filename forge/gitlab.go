package forge

import (
	"context"
	"fmt"

	"github.com/xanzy/go-gitlab"
)

// GitLab implements Client over the GitLab API. Release candidates are
// a GitHub feature; EnsureDraftRelease reports ErrUnsupported.
type GitLab struct {
	client    *gitlab.Client
	projectID string
}

// NewGitLab creates a GitLab client for the remote using a personal
// access token. Self-hosted instances get their base URL from the
// remote host.
func NewGitLab(token string, remote Remote) (*GitLab, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var client *gitlab.Client
	var err error
	if remote.Host != "" && remote.Host != "gitlab.com" {
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL("https://"+remote.Host))
	} else {
		client, err = gitlab.NewClient(token)
	}
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLab{client: client, projectID: remote.Slug()}, nil
}

// LatestRunStatus returns the most recent pipeline on branch.
func (g *GitLab) LatestRunStatus(ctx context.Context, branch string) (*Status, error) {
	pipelines, _, err := g.client.Pipelines.ListProjectPipelines(g.projectID,
		&gitlab.ListProjectPipelinesOptions{
			Ref:         gitlab.Ptr(branch),
			ListOptions: gitlab.ListOptions{PerPage: 1},
		},
		gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	if len(pipelines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRuns, branch)
	}

	p := pipelines[0]
	status := &Status{
		ID:     int64(p.ID),
		Branch: branch,
		State:  p.Status,
		URL:    p.WebURL,
	}
	// GitLab folds state and conclusion into one status value.
	switch p.Status {
	case "success", "failed", "canceled", "skipped":
		status.Conclusion = p.Status
		status.State = "completed"
	}
	return status, nil
}

func (g *GitLab) EnsureDraftRelease(_ context.Context, tag, _ string) (bool, error) {
	return false, fmt.Errorf("%w: draft release %s", ErrUnsupported, tag)
}
