//go:build cucumber

package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/suite"
)

// TestRunControllerScenarios runs the controller feature scenarios.
func TestRunControllerScenarios(t *testing.T) {
	ts := godog.TestSuite{
		Name:                "run-controller",
		ScenarioInitializer: InitializeRunControllerScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("features", "run_controller.feature")},
			Strict:   true,
			TestingT: t,
		},
	}
	if ts.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeRunControllerScenario wires steps for controller scenarios.
func InitializeRunControllerScenario(ctx *godog.ScenarioContext) {
	state := &controllerState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		_ = os.RemoveAll(state.dir)
		return ctx, nil
	})

	ctx.Step(`^a candidate "([^"]+)" with query "([^"]+)" relevant to "([^"]+)"$`, state.givenCandidate)
	ctx.Step(`^indexing "([^"]+)" prints "([^"]*)" and exits (\d+)$`, state.givenIndexOutput)
	ctx.Step(`^searches return "([^"]*)"$`, state.givenSearchResults)
	ctx.Step(`^the benchmark runs with k=(\d+)$`, state.whenRun)
	ctx.Step(`^the benchmark is resumed$`, state.whenResumed)
	ctx.Step(`^"([^"]+)" is recorded with alert "([^"]+)"$`, state.thenAlert)
	ctx.Step(`^no query was attempted for "([^"]+)"$`, state.thenNoQueries)
	ctx.Step(`^"([^"]+)" is recorded with (\d+) query$`, state.thenQueryCount)
	ctx.Step(`^the report has exactly one record for each of "([^"]+)"$`, state.thenOneRecordEach)
	ctx.Step(`^query "([^"]+)" of "([^"]+)" has precision ([0-9.]+)$`, state.thenPrecision)
}

type controllerState struct {
	dir        string
	candidates []suite.Candidate
	exec       *fakeExecutor
	cfg        Config
	rep        *report.Report
}

func (s *controllerState) reset() error {
	dir, err := os.MkdirTemp("", "controller-*")
	if err != nil {
		return err
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	*s = controllerState{
		dir:  resolved,
		exec: newFakeExecutor(),
		rep:  &report.Report{Repos: []report.RepoRecord{}},
	}
	s.cfg = DefaultConfig()
	s.cfg.LogDir = filepath.Join(resolved, "logs")
	s.cfg.Timestamp = "20260101T000000Z"
	return nil
}

func (s *controllerState) repoPath(name string) string {
	return filepath.Join(s.dir, "repos", name)
}

func (s *controllerState) givenCandidate(name, query, relevant string) error {
	if err := os.MkdirAll(s.repoPath(name), 0o755); err != nil {
		return err
	}
	s.candidates = append(s.candidates, suite.Candidate{
		Name:    name,
		Path:    s.repoPath(name),
		Queries: []suite.Query{{Query: query, RelevantFiles: []string{relevant}}},
	})
	return nil
}

func (s *controllerState) givenIndexOutput(name, stdout string, rc int) error {
	s.exec.index[s.repoPath(name)] = fakeStep{rc: rc, stdout: stdout}
	return nil
}

func (s *controllerState) givenSearchResults(files string) error {
	var list []string
	for _, f := range strings.Split(files, ",") {
		list = append(list, strings.TrimSpace(f))
	}
	for _, c := range s.candidates {
		for _, q := range c.Queries {
			s.exec.search[q.Query] = fakeStep{stdout: okSearch(list...)}
		}
	}
	return nil
}

func (s *controllerState) whenRun(k int) error {
	s.cfg.K = k
	return New(s.cfg, s.exec).Run(context.Background(), s.candidates, s.rep)
}

func (s *controllerState) whenResumed() error {
	cfg := s.cfg
	cfg.Resume = true
	return New(cfg, s.exec).Run(context.Background(), s.candidates, s.rep)
}

func (s *controllerState) record(name string) (report.RepoRecord, error) {
	rec, ok := s.rep.Repo(name)
	if !ok {
		return rec, fmt.Errorf("no record for %s", name)
	}
	return rec, nil
}

func (s *controllerState) thenAlert(name, alert string) error {
	rec, err := s.record(name)
	if err != nil {
		return err
	}
	if rec.Alert != alert {
		return fmt.Errorf("alert = %q, want %q", rec.Alert, alert)
	}
	return nil
}

func (s *controllerState) thenNoQueries(name string) error {
	rec, err := s.record(name)
	if err != nil {
		return err
	}
	if len(rec.Queries) != 0 {
		return fmt.Errorf("%s has %d queries", name, len(rec.Queries))
	}
	for _, c := range s.candidates {
		if c.Name != name {
			continue
		}
		for _, req := range s.exec.searches {
			for _, q := range c.Queries {
				if req.Query == q.Query {
					return fmt.Errorf("query %q was searched", q.Query)
				}
			}
		}
	}
	return nil
}

func (s *controllerState) thenQueryCount(name string, n int) error {
	rec, err := s.record(name)
	if err != nil {
		return err
	}
	if len(rec.Queries) != n {
		return fmt.Errorf("%s has %d queries, want %d", name, len(rec.Queries), n)
	}
	return nil
}

func (s *controllerState) thenOneRecordEach(list string) error {
	counts := map[string]int{}
	for _, rec := range s.rep.Repos {
		counts[rec.Name]++
	}
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if counts[name] != 1 {
			return fmt.Errorf("%s has %d records", name, counts[name])
		}
	}
	if len(s.rep.Repos) != len(counts) {
		return fmt.Errorf("report has %d records for %d names", len(s.rep.Repos), len(counts))
	}
	return nil
}

func (s *controllerState) thenPrecision(query, name string, want float64) error {
	rec, err := s.record(name)
	if err != nil {
		return err
	}
	for _, q := range rec.Queries {
		if q.Query == query {
			if q.Metrics.PrecisionAtK != want {
				return fmt.Errorf("precision = %v, want %v", q.Metrics.PrecisionAtK, want)
			}
			return nil
		}
	}
	return fmt.Errorf("query %q not recorded", query)
}
