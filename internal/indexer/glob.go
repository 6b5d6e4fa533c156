package indexer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// expandGlobs resolves patterns to a deduplicated, sorted list of regular
// file paths. Patterns containing "**" recurse: the segment before "**" is
// the walk root, and the remainder (if any) is matched against the
// relative path with filepath.Match semantics per path segment.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		var matches []string
		var err error
		if strings.Contains(pattern, "**") {
			matches, err = expandRecursiveGlob(pattern)
		} else {
			matches, err = filepath.Glob(pattern)
		}
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, statErr := os.Stat(m)
			if statErr != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// expandRecursiveGlob handles a single pattern containing "**", e.g.
// "src/**/*.rs": it walks the tree rooted at the path segment before the
// first "**" and matches the remainder against each candidate's relative
// suffix.
func expandRecursiveGlob(pattern string) ([]string, error) {
	parts := strings.SplitN(pattern, "**", 2)
	root := strings.TrimSuffix(parts[0], "/")
	if root == "" {
		root = "."
	}
	suffix := strings.TrimPrefix(parts[1], "/")

	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, don't abort the whole walk
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if suffix == "" {
			results = append(results, path)
			return nil
		}
		if matched, _ := filepath.Match(suffix, filepath.Base(rel)); matched {
			results = append(results, path)
			return nil
		}
		if matched, _ := matchGlobSuffix(suffix, rel); matched {
			results = append(results, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return results, err
}

// matchGlobSuffix matches a "**"-free suffix pattern (which may still
// contain "/") against a relative path, segment by segment.
func matchGlobSuffix(pattern, rel string) (bool, error) {
	patSegs := strings.Split(pattern, "/")
	relSegs := strings.Split(rel, "/")
	if len(patSegs) > len(relSegs) {
		return false, nil
	}
	relSegs = relSegs[len(relSegs)-len(patSegs):]
	for i, p := range patSegs {
		ok, err := filepath.Match(p, relSegs[i])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
