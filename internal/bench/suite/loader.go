package suite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DjordjeVuckovic/context-bench/internal/apperr"
)

const (
	DefaultDatasetPath      = "data/audit_candidates.json"
	DefaultLocalDatasetPath = "data/audit_candidates.local.json"
)

// DefaultPath returns the local dataset override under root when it exists,
// otherwise the example dataset.
func DefaultPath(root string) string {
	local := filepath.Join(root, DefaultLocalDatasetPath)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return filepath.Join(root, DefaultDatasetPath)
}

func LoadFromFile(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse decodes a JSON array of candidates.
func Parse(data []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, apperr.NewValidationWrap("parse candidates JSON", err)
	}
	if err := validate(candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func ParseYAML(data []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := yaml.Unmarshal(data, &candidates); err != nil {
		return nil, apperr.NewValidationWrap("parse candidates YAML", err)
	}
	if err := validate(candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// validate reports every problem in the dataset at once.
func validate(candidates []Candidate) error {
	var issues []string
	addf := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	seen := make(map[string]int, len(candidates))
	for i, c := range candidates {
		if c.Name == "" {
			addf("candidate at index %d has no name", i)
		} else if prev, ok := seen[c.Name]; ok {
			addf("candidate %q at index %d duplicates index %d", c.Name, i, prev)
		} else {
			seen[c.Name] = i
		}

		if c.Path == "" {
			addf("candidate %q has no path", c.Name)
		}
		for j, q := range c.Queries {
			if strings.TrimSpace(q.Query) == "" {
				addf("candidate %q query at index %d is empty", c.Name, j)
			}
		}
		for j, n := range c.NegativeExamples {
			if strings.TrimSpace(n.Query) == "" {
				addf("candidate %q negative example at index %d is empty", c.Name, j)
			}
		}
	}

	if len(issues) > 0 {
		return apperr.NewValidation("invalid candidates dataset", issues...)
	}
	return nil
}
