package forge

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNoToken indicates no API token is present in the environment.
	ErrNoToken = errors.New("no forge token in environment")

	// ErrNoRuns indicates the branch has no recorded CI runs yet.
	ErrNoRuns = errors.New("no CI runs for branch")

	// ErrUnsupported indicates the operation is not available on this
	// forge.
	ErrUnsupported = errors.New("operation not supported on this forge")
)

// Status summarizes the most recent CI run on a branch.
type Status struct {
	ID         int64
	Branch     string
	State      string // queued, in_progress, completed, ...
	Conclusion string // success, failure, ... (empty while running)
	URL        string
}

// Client is the forge surface devflow uses: one read for ci:status and
// one idempotent write for release candidates.
type Client interface {
	LatestRunStatus(ctx context.Context, branch string) (*Status, error)
	EnsureDraftRelease(ctx context.Context, tag, name string) (created bool, err error)
}

// NewClient builds the client matching the remote's forge kind.
func NewClient(remote Remote, token string) (Client, error) {
	switch remote.Kind {
	case KindGitHub:
		return NewGitHub(token, remote)
	case KindGitLab:
		return NewGitLab(token, remote)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, remote.Host)
}

// TokenFromEnv looks up the API token for the remote's forge kind:
// GITHUB_TOKEN or GITLAB_TOKEN first, then the generic GIT_TOKEN.
func TokenFromEnv(kind Kind) (string, error) {
	var names []string
	switch kind {
	case KindGitHub:
		names = []string{"GITHUB_TOKEN", "GIT_TOKEN"}
	case KindGitLab:
		names = []string{"GITLAB_TOKEN", "GIT_TOKEN"}
	default:
		names = []string{"GIT_TOKEN"}
	}
	for _, name := range names {
		if token := os.Getenv(name); token != "" {
			return token, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", ErrNoToken, names)
}
