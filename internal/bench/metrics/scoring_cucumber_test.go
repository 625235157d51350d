//go:build cucumber

package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// TestScoringScenarios runs the scoring feature scenarios.
func TestScoringScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "scoring",
		ScenarioInitializer: InitializeScoringScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("features", "scoring.feature")},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScoringScenario wires steps for scoring scenarios.
func InitializeScoringScenario(ctx *godog.ScenarioContext) {
	state := &scoringState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if state.root != "" {
			_ = os.RemoveAll(state.root)
		}
		return ctx, nil
	})

	ctx.Step(`^a repository containing "([^"]*)"$`, state.givenRepository)
	ctx.Step(`^the search returned "([^"]*)"$`, state.givenResults)
	ctx.Step(`^the search returned the absolute path of "([^"]*)"$`, state.givenAbsoluteResult)
	ctx.Step(`^the search returned nothing$`, state.givenNoResults)
	ctx.Step(`^the relevant files are "([^"]*)"$`, state.givenRelevant)
	ctx.Step(`^I score the results with k=(\d+)$`, state.whenScored)
	ctx.Step(`^I evaluate the negative query with k=(\d+)$`, state.whenNegative)
	ctx.Step(`^precision at k is ([0-9.]+)$`, state.thenPrecision)
	ctx.Step(`^the hits are "([^"]*)"$`, state.thenHits)
	ctx.Step(`^there are no hits$`, state.thenNoHits)
	ctx.Step(`^it is a false positive$`, state.thenFalsePositive)
	ctx.Step(`^it is not a false positive$`, state.thenNotFalsePositive)
}

type scoringState struct {
	root     string
	results  []string
	relevant []string
	scored   PrecisionResult
	negative NegativeResult
}

func (s *scoringState) reset() error {
	*s = scoringState{}
	dir, err := os.MkdirTemp("", "scoring-*")
	if err != nil {
		return err
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	s.root = resolved
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *scoringState) givenRepository(files string) error {
	for _, f := range splitList(files) {
		p := filepath.Join(s.root, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (s *scoringState) givenResults(files string) error {
	s.results = splitList(files)
	return nil
}

func (s *scoringState) givenAbsoluteResult(file string) error {
	s.results = []string{filepath.Join(s.root, file)}
	return nil
}

func (s *scoringState) givenNoResults() error {
	s.results = nil
	return nil
}

func (s *scoringState) givenRelevant(files string) error {
	s.relevant = splitList(files)
	return nil
}

func (s *scoringState) whenScored(k int) error {
	s.scored = Precision(s.results, s.relevant, s.root, k)
	return nil
}

func (s *scoringState) whenNegative(k int) error {
	s.negative = EvaluateNegative(s.results, s.root, k)
	return nil
}

func (s *scoringState) thenPrecision(want float64) error {
	if got := s.scored.PrecisionAtK; got != want {
		return fmt.Errorf("precision at k = %v, want %v", got, want)
	}
	return nil
}

func (s *scoringState) thenHits(files string) error {
	want := splitList(files)
	if strings.Join(s.scored.Hits, ",") != strings.Join(want, ",") {
		return fmt.Errorf("hits = %v, want %v", s.scored.Hits, want)
	}
	return nil
}

func (s *scoringState) thenNoHits() error {
	if len(s.scored.Hits) != 0 {
		return fmt.Errorf("hits = %v, want none", s.scored.Hits)
	}
	return nil
}

func (s *scoringState) thenFalsePositive() error {
	if !s.negative.FalsePositive {
		return fmt.Errorf("expected a false positive, top files %v", s.negative.TopFiles)
	}
	return nil
}

func (s *scoringState) thenNotFalsePositive() error {
	if s.negative.FalsePositive {
		return fmt.Errorf("unexpected false positive, top files %v", s.negative.TopFiles)
	}
	return nil
}
