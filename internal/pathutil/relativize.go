// Package pathutil implements the path relativizer: mapping a path that
// makes sense from the invocation directory onto one that names the same
// file when the current directory is some other working/scratch directory.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Relativize returns a path that, when interpreted with current directory
// base, names the same file as p does from the invocation directory.
//
//   - If base is "." (the invocation directory itself), p is returned as-is.
//   - If p is absolute, it is returned as-is.
//   - If p lies under base, the base prefix is stripped.
//   - If base is relative and free of ".." components, the result is
//     "../../.../p" with one ".." per component of base.
//   - Otherwise, p is canonicalized to an absolute path.
func Relativize(p, base string) (string, error) {
	if base == "." || base == "" || filepath.IsAbs(p) {
		return p, nil
	}

	cleanBase := filepath.Clean(base)
	rel, err := filepath.Rel(cleanBase, filepath.Clean(p))
	if err == nil && !strings.HasPrefix(rel, "..") {
		// p lies under base: the suffix relative to base.
		return rel, nil
	}

	if !filepath.IsAbs(cleanBase) && !containsParentDir(cleanBase) {
		depth := len(strings.Split(cleanBase, string(filepath.Separator)))
		up := strings.Repeat(".."+string(filepath.Separator), depth)
		return filepath.Join(up, p), nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func containsParentDir(p string) bool {
	for _, c := range strings.Split(p, string(filepath.Separator)) {
		if c == ".." {
			return true
		}
	}
	return false
}
