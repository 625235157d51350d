package runner

import "github.com/DjordjeVuckovic/context-bench/internal/bench/suite"

// Select applies the include filter, then skips every candidate before
// startFrom. The second return value reports whether startFrom was found;
// it is always true when startFrom is empty.
func Select(candidates []suite.Candidate, include []string, startFrom string) ([]suite.Candidate, bool) {
	filtered := candidates
	if len(include) > 0 {
		set := make(map[string]struct{}, len(include))
		for _, name := range include {
			set[name] = struct{}{}
		}
		filtered = make([]suite.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := set[c.Name]; ok {
				filtered = append(filtered, c)
			}
		}
	}

	if startFrom == "" {
		return filtered, true
	}
	for i, c := range filtered {
		if c.Name == startFrom {
			return filtered[i:], true
		}
	}
	return []suite.Candidate{}, false
}
