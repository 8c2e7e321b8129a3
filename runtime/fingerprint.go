package runtime

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/softmentor/devflow"
)

// Fingerprint hashes the declared toolchain input files into the digest
// that keys cache partitions and container image tags. Each path, sorted
// and deduplicated, contributes its UTF-8 bytes, a NUL, the lowercase
// hex SHA-256 of the file contents, and a NUL to the outer digest. A
// missing input is a hard error so that host and CI can never disagree
// silently about what was hashed.
func Fingerprint(repoRoot string, inputs []string) (string, error) {
	paths := append([]string(nil), inputs...)
	sort.Strings(paths)

	outer := sha256.New()
	prev := ""
	for i, p := range paths {
		if i > 0 && p == prev {
			continue
		}
		prev = p

		sum, err := hashFile(filepath.Join(repoRoot, p))
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", devflow.ErrMissingFingerprintInput, p)
			}
			return "", fmt.Errorf("fingerprint %s: %w", p, err)
		}
		outer.Write([]byte(p))
		outer.Write([]byte{0})
		outer.Write([]byte(sum))
		outer.Write([]byte{0})
	}
	return hex.EncodeToString(outer.Sum(nil)), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
