package forge

import (
	"errors"
	"testing"

	"github.com/softmentor/devflow/testutil"
)

func TestParseRemote(t *testing.T) {
	tests := []struct {
		raw   string
		kind  Kind
		owner string
		repo  string
	}{
		{"https://github.com/acme/widget.git", KindGitHub, "acme", "widget"},
		{"https://github.com/acme/widget", KindGitHub, "acme", "widget"},
		{"git@github.com:acme/widget.git", KindGitHub, "acme", "widget"},
		{"https://gitlab.com/group/sub/widget.git", KindGitLab, "group/sub", "widget"},
		{"git@gitlab.example.org:ops/widget.git", KindGitLab, "ops", "widget"},
		{"ssh://git@github.com/acme/widget.git", KindGitHub, "acme", "widget"},
		{"https://forge.example.net/acme/widget", KindUnknown, "acme", "widget"},
	}

	for _, tt := range tests {
		remote, err := ParseRemote(tt.raw)
		if err != nil {
			t.Errorf("ParseRemote(%q) error: %v", tt.raw, err)
			continue
		}
		if remote.Kind != tt.kind || remote.Owner != tt.owner || remote.Repo != tt.repo {
			t.Errorf("ParseRemote(%q) = %+v, want %s %s/%s", tt.raw, remote, tt.kind, tt.owner, tt.repo)
		}
	}
}

func TestParseRemoteRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not a url", "https://github.com/", "git@github.com:widget"} {
		if _, err := ParseRemote(raw); !errors.Is(err, ErrUnknownRemote) {
			t.Errorf("ParseRemote(%q) error = %v, want ErrUnknownRemote", raw, err)
		}
	}
}

func TestRemoteSlug(t *testing.T) {
	r := Remote{Owner: "acme", Repo: "widget"}
	if r.Slug() != "acme/widget" {
		t.Errorf("Slug = %q, want acme/widget", r.Slug())
	}
}

func TestDetectRemoteNoRepo(t *testing.T) {
	if _, err := DetectRemote(t.TempDir()); !errors.Is(err, ErrNoRemote) {
		t.Errorf("error = %v, want ErrNoRemote", err)
	}
}

func TestDetectRemote(t *testing.T) {
	dir := testutil.SetupTestRepo(t)

	if _, err := DetectRemote(dir); !errors.Is(err, ErrNoRemote) {
		t.Errorf("error without origin = %v, want ErrNoRemote", err)
	}

	testutil.AddRemote(t, dir, "origin", "git@github.com:acme/widget.git")

	remote, err := DetectRemote(dir)
	if err != nil {
		t.Fatalf("DetectRemote error: %v", err)
	}
	if remote.Kind != KindGitHub || remote.Slug() != "acme/widget" {
		t.Errorf("DetectRemote = %+v", remote)
	}
}
