package extension

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// BinaryPrefix is the naming convention for subprocess extension binaries.
const BinaryPrefix = "devflow-ext-"

// discovered pairs an extension name with the binary that advertises it.
type discovered struct {
	name string
	path string
}

// scanPath walks every directory on PATH in order and collects executables
// named devflow-ext-*. The first occurrence of a basename wins; later
// directories cannot shadow earlier ones.
func scanPath(pathEnv string) []discovered {
	var found []discovered
	seen := make(map[string]bool)

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			base := entry.Name()
			if !strings.HasPrefix(base, BinaryPrefix) || seen[base] {
				continue
			}
			full := filepath.Join(dir, base)
			if !isExecutable(entry, full) {
				continue
			}
			seen[base] = true
			found = append(found, discovered{
				name: strings.TrimPrefix(base, BinaryPrefix),
				path: full,
			})
		}
	}
	return found
}

func isExecutable(entry fs.DirEntry, path string) bool {
	info, err := entry.Info()
	if err != nil {
		info, err = os.Stat(path)
		if err != nil {
			return false
		}
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}

// probe runs the discovery handshake against one binary. Failures are
// returned to the caller, which decides whether they are fatal.
func probe(ctx context.Context, d discovered) (*Subprocess, error) {
	caps, err := Discover(ctx, d.path)
	if err != nil {
		return nil, err
	}
	slog.Debug("discovered subprocess extension", "name", d.name, "binary", d.path, "capabilities", caps)
	return NewSubprocess(d.name, d.path, caps), nil
}
