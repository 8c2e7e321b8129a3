package forge

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/softmentor/devflow/git"
)

// Errors reported while inspecting the repository's remotes.
var (
	// ErrNoRemote indicates the repository has no origin remote.
	ErrNoRemote = errors.New("no origin remote configured")

	// ErrUnknownRemote indicates the origin URL could not be parsed.
	ErrUnknownRemote = errors.New("unrecognized remote URL")
)

// Kind identifies the hosting service behind a remote.
type Kind string

const (
	KindGitHub  Kind = "github"
	KindGitLab  Kind = "gitlab"
	KindUnknown Kind = "unknown"
)

// Remote is a parsed origin remote.
type Remote struct {
	Kind  Kind
	Host  string
	Owner string // may contain slashes for GitLab subgroups
	Repo  string
}

// Slug returns the owner/repo path of the remote.
func (r Remote) Slug() string {
	return r.Owner + "/" + r.Repo
}

// DetectRemote reads the origin URL of the repository at repoRoot and
// parses it.
func DetectRemote(repoRoot string) (Remote, error) {
	g, err := git.NewContext(repoRoot)
	if err != nil {
		return Remote{}, ErrNoRemote
	}
	raw, err := g.RemoteURL("origin")
	if err != nil {
		return Remote{}, ErrNoRemote
	}
	return ParseRemote(raw)
}

// ParseRemote understands https URLs and scp-style ssh URLs
// (git@host:owner/repo.git).
func ParseRemote(raw string) (Remote, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Remote{}, ErrUnknownRemote
	}

	var host, path string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Remote{}, fmt.Errorf("%w: %s", ErrUnknownRemote, raw)
		}
		host = u.Hostname()
		path = u.Path
	case strings.Contains(raw, "@") && strings.Contains(raw, ":"):
		rest := raw[strings.Index(raw, "@")+1:]
		hostPart, pathPart, ok := strings.Cut(rest, ":")
		if !ok {
			return Remote{}, fmt.Errorf("%w: %s", ErrUnknownRemote, raw)
		}
		host = hostPart
		path = pathPart
	default:
		return Remote{}, fmt.Errorf("%w: %s", ErrUnknownRemote, raw)
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	segments := strings.Split(path, "/")
	if len(segments) < 2 || segments[0] == "" || segments[len(segments)-1] == "" {
		return Remote{}, fmt.Errorf("%w: %s", ErrUnknownRemote, raw)
	}

	return Remote{
		Kind:  kindForHost(host),
		Host:  host,
		Owner: strings.Join(segments[:len(segments)-1], "/"),
		Repo:  segments[len(segments)-1],
	}, nil
}

func kindForHost(host string) Kind {
	switch {
	case host == "github.com":
		return KindGitHub
	case strings.Contains(host, "gitlab"):
		return KindGitLab
	}
	return KindUnknown
}
