package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/softmentor/devflow/config"
	"github.com/softmentor/devflow/forge"
)

// DefaultCacheRoot is the repo-relative cache directory when
// DWF_CACHE_ROOT is not set.
const DefaultCacheRoot = ".cache/devflow"

// SharedFingerprintInput is hashed alongside the extension-declared
// inputs whenever it exists at the repository root.
const SharedFingerprintInput = "Dockerfile.devflow"

// Context is the resolved environment for one command.
type Context struct {
	Profile     string
	Engine      string
	ImageRef    string
	Fingerprint string
	CacheRoot   string
	RepoRoot    string
	EnvOverlay  map[string]string
}

// New resolves the runtime for one command. inputs and envOverlay come
// from the populated extension registry. Fingerprint and ImageRef are
// only computed under the container profile.
func New(ctx context.Context, cfg *config.Config, repoRoot string, inputs []string, envOverlay map[string]string) (*Context, error) {
	rt, err := NewResolver().Resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rc := &Context{
		Profile:    rt.Profile,
		Engine:     rt.Engine,
		CacheRoot:  CacheRoot(repoRoot),
		RepoRoot:   repoRoot,
		EnvOverlay: envOverlay,
	}
	if rt.Profile != ProfileContainer {
		return rc, nil
	}

	all := append([]string(nil), inputs...)
	if _, err := os.Stat(filepath.Join(repoRoot, SharedFingerprintInput)); err == nil {
		all = append(all, SharedFingerprintInput)
	}
	fp, err := Fingerprint(repoRoot, all)
	if err != nil {
		return nil, err
	}
	rc.Fingerprint = fp
	rc.ImageRef = imageRef(cfg, repoRoot, fp)
	return rc, nil
}

// CacheRoot returns the shared cache directory: the DWF_CACHE_ROOT
// environment override (resolved against repoRoot when relative), else
// the repo-local default.
func CacheRoot(repoRoot string) string {
	if root := os.Getenv("DWF_CACHE_ROOT"); root != "" {
		if filepath.IsAbs(root) {
			return root
		}
		return filepath.Join(repoRoot, root)
	}
	return filepath.Join(repoRoot, DefaultCacheRoot)
}

// imageRef prefers the configured container.image; otherwise the
// reference is derived from the origin remote and the fingerprint.
func imageRef(cfg *config.Config, repoRoot, fingerprint string) string {
	if cfg.Container != nil && cfg.Container.Image != "" {
		return cfg.Container.Image
	}
	if remote, err := forge.DetectRemote(repoRoot); err == nil {
		return fmt.Sprintf("ghcr.io/%s/%s-ci:%s", remote.Owner, remote.Repo, fingerprint)
	}
	return fmt.Sprintf("ghcr.io/local/%s-ci:%s", cfg.Project.Name, fingerprint)
}
