package assets

import (
	"os"
	"path/filepath"
	"strings"
)

// Overlap reports whether a and b are the same directory or one lies
// inside the other. Both are made absolute and their existing parts are
// resolved through symlinks first, so "data", "./data" and "$PWD/data" all
// name the same tree.
func Overlap(a, b string) (bool, error) {
	ra, err := resolvePath(a)
	if err != nil {
		return false, err
	}
	rb, err := resolvePath(b)
	if err != nil {
		return false, err
	}
	return isWithin(ra, rb) || isWithin(rb, ra), nil
}

// resolvePath returns the absolute form of path with the longest existing
// prefix resolved through symlinks. The missing tail is kept as written.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var rest []string
	cur := abs
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

// isWithin reports whether path equals root or lies below it. Both must be
// absolute and clean.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
