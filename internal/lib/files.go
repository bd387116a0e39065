package lib

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// PathMatchesOneOfPatterns reports whether any of the doublestar globs
// matches the given context-relative path. Empty patterns are skipped, so
// blank entries from a comma-separated exclude list are harmless.
func PathMatchesOneOfPatterns(path string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("matching pattern %q against %q: %w", pattern, path, err)
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}
