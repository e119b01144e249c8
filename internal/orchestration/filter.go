package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/napr/internal/evaluation"
)

// FilterModels returns the subset of entries whose name matches at least one
// of the given glob patterns. An empty patterns slice returns all entries
// unchanged.
func FilterModels(entries []evaluation.Entry, patterns []string) ([]evaluation.Entry, error) {
	if len(patterns) == 0 {
		return entries, nil
	}

	var matched []evaluation.Entry
	for _, e := range entries {
		ok, err := matchesAny(e.Name, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// matchesAny reports whether name matches any pattern.
func matchesAny(name string, patterns []string) (bool, error) {
	for _, p := range patterns {
		ok, err := filepath.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid model filter pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
