package metrics

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalizer maps result and ground-truth paths onto one representation:
// forward-slash paths relative to the repository root, or the absolute
// normalized path when a file lies outside the root.
type Normalizer struct {
	root string
}

func NewNormalizer(root string) Normalizer {
	return Normalizer{root: resolvePath(root)}
}

// NormalizePath is a convenience wrapper for one-off normalization.
func NormalizePath(path, root string) string {
	return NewNormalizer(root).Normalize(path)
}

func (n Normalizer) Normalize(path string) string {
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = n.root + string(filepath.Separator) + candidate
	}
	resolved := resolvePath(candidate)

	rel, err := filepath.Rel(n.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(resolved)
	}
	return filepath.ToSlash(rel)
}

// NormalizeAll normalizes paths in order.
func (n Normalizer) NormalizeAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, n.Normalize(p))
	}
	return out
}

const maxSymlinks = 255

// resolvePath returns the absolute form of p with symlinks followed one
// component at a time. A ".." applies to the directory a link points to, not
// to the link's own location. Components that do not exist are kept as is.
func resolvePath(p string) string {
	sep := string(filepath.Separator)
	if !filepath.IsAbs(p) {
		if wd, err := os.Getwd(); err == nil {
			p = wd + sep + p
		}
	}

	resolved := sep
	pending := strings.Split(p, sep)
	links := 0
	for len(pending) > 0 {
		comp := pending[0]
		pending = pending[1:]

		switch comp {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, comp)
		info, err := os.Lstat(next)
		if err != nil || info.Mode()&os.ModeSymlink == 0 || links >= maxSymlinks {
			resolved = next
			continue
		}
		target, err := os.Readlink(next)
		if err != nil {
			resolved = next
			continue
		}
		links++
		if filepath.IsAbs(target) {
			resolved = sep
		}
		pending = append(strings.Split(target, sep), pending...)
	}
	return resolved
}
