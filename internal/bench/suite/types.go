package suite

import (
	"os"
	"path/filepath"
	"strings"
)

// Candidate is one repository to benchmark together with its labeled queries.
type Candidate struct {
	Name             string          `json:"name" yaml:"name" schema:"required,minLength=1" description:"Unique repository name"`
	Path             string          `json:"path" yaml:"path" schema:"required,minLength=1" description:"Repository path, ~ is expanded"`
	Files            *int            `json:"files,omitempty" yaml:"files,omitempty" schema:"minimum=0"`
	LanguageCount    *int            `json:"language_count,omitempty" yaml:"language_count,omitempty" schema:"minimum=0"`
	Queries          []Query         `json:"queries" yaml:"queries"`
	NegativeExamples []NegativeQuery `json:"negative_examples" yaml:"negative_examples"`
}

type Query struct {
	Query           string   `json:"query" yaml:"query" schema:"required,minLength=1"`
	RelevantFiles   []string `json:"relevant_files" yaml:"relevant_files" description:"Ground-truth paths, relative to the repository root"`
	Type            *string  `json:"type,omitempty" yaml:"type,omitempty"`
	Difficulty      *string  `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	ExpectedSnippet *string  `json:"expected_snippet,omitempty" yaml:"expected_snippet,omitempty"`
}

// NegativeQuery is a query for which the repository holds nothing relevant.
type NegativeQuery struct {
	Query  string  `json:"query" yaml:"query" schema:"required,minLength=1"`
	Reason *string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// RepoPath expands a leading ~ and returns the absolute, cleaned repository path.
func (c Candidate) RepoPath() (string, error) {
	p := c.Path
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
