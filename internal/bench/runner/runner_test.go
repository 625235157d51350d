package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/engine"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/suite"
)

const okIndex = `{"status":"ok","data":{"files":3}}`

func okSearch(files ...string) string {
	body := `{"status":"ok","data":{"results":[`
	for i, f := range files {
		if i > 0 {
			body += ","
		}
		body += `{"file":"` + f + `"}`
	}
	return body + `]}}`
}

type fakeStep struct {
	rc     int
	stdout string
	stderr string
	err    error
}

func (s fakeStep) result(args []string) (engine.CommandResult, engine.Response, error) {
	res := engine.CommandResult{Command: args, ReturnCode: s.rc, Stdout: s.stdout, Stderr: s.stderr, TimeMs: 12.5, MaxRSSKB: 4096}
	if s.err != nil {
		res.ReturnCode = -1
		return res, engine.Response{Kind: engine.ResponseMalformed, Reason: s.err.Error()}, s.err
	}
	return res, engine.ParseResponse(s.rc, s.stdout), nil
}

type fakeExecutor struct {
	index    map[string]fakeStep
	search   map[string]fakeStep
	onSearch func(req engine.SearchRequest)

	indexed  []string
	labels   []string
	searches []engine.SearchRequest
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{index: map[string]fakeStep{}, search: map[string]fakeStep{}}
}

func (f *fakeExecutor) Name() string { return "fake" }

func (f *fakeExecutor) Index(_ context.Context, repoPath, label string) (engine.CommandResult, engine.Response, error) {
	f.indexed = append(f.indexed, repoPath)
	f.labels = append(f.labels, label)
	step, ok := f.index[repoPath]
	if !ok {
		step = fakeStep{stdout: okIndex}
	}
	return step.result([]string{"index", repoPath})
}

func (f *fakeExecutor) Search(_ context.Context, req engine.SearchRequest) (engine.CommandResult, engine.Response, error) {
	f.searches = append(f.searches, req)
	if f.onSearch != nil {
		f.onSearch(req)
	}
	step, ok := f.search[req.Query]
	if !ok {
		step = fakeStep{stdout: okSearch()}
	}
	return step.result([]string{"search", req.Query})
}

type recordingObserver struct {
	started  []string
	skipped  map[string]string
	finished []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{skipped: map[string]string{}}
}

func (o *recordingObserver) CandidateStarted(name string, _, _ int) {
	o.started = append(o.started, name)
}

func (o *recordingObserver) CandidateSkipped(name, reason string) {
	o.skipped[name] = reason
}

func (o *recordingObserver) CandidateFinished(rec report.RepoRecord) {
	o.finished = append(o.finished, rec.Name)
}

func repoDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.LogDir = t.TempDir()
	cfg.Timestamp = "20260101T000000Z"
	return cfg
}

func emptyReport() *report.Report {
	return &report.Report{Repos: []report.RepoRecord{}}
}

func TestRun_FirstResultRelevant(t *testing.T) {
	repo := repoDir(t, "src/a.py", "src/b.py")
	exec := newFakeExecutor()
	exec.search["q1"] = fakeStep{stdout: okSearch("src/a.py", "src/b.py")}

	cfg := testConfig(t)
	cfg.K = 1
	rep := emptyReport()
	candidates := []suite.Candidate{{Name: "repoA", Path: repo, Queries: []suite.Query{{Query: "q1", RelevantFiles: []string{"src/a.py"}}}}}

	require.NoError(t, New(cfg, exec).Run(context.Background(), candidates, rep))

	require.Len(t, rep.Repos, 1)
	rec := rep.Repos[0]
	assert.Equal(t, repo, rec.Path)
	require.NotNil(t, rec.Index)
	assert.Equal(t, "ok", *rec.Index.Status)
	assert.Equal(t, int64(4096), rec.Index.MaxRSSKB)

	require.Len(t, rec.Queries, 1)
	m := rec.Queries[0].Metrics
	assert.Equal(t, 1.0, m.PrecisionAtK)
	assert.Equal(t, []string{"src/a.py"}, m.Hits)
	assert.Equal(t, []string{"src/a.py"}, m.TopFiles)
	assert.Equal(t, 12.5, m.TimeMs)

	require.NotNil(t, rec.Summary)
	assert.Empty(t, rec.Alert)
	assert.Equal(t, 1, rep.Summary.RepoCount)
	assert.Equal(t, 1.0, rep.Summary.AvgPrecisionAtK)

	assert.Equal(t, []string{"index:repoA"}, exec.labels)
	require.Len(t, exec.searches, 1)
	assert.Equal(t, engine.SearchRequest{Query: "q1", Limit: DefaultLimit, Project: repo}, exec.searches[0])
}

func TestRun_NoRelevantResults(t *testing.T) {
	repo := repoDir(t)
	exec := newFakeExecutor()
	exec.search["q1"] = fakeStep{stdout: okSearch("src/a.py", "src/b.py")}

	cfg := testConfig(t)
	cfg.K = 2
	rep := emptyReport()
	candidates := []suite.Candidate{{Name: "repoA", Path: repo, Queries: []suite.Query{{Query: "q1", RelevantFiles: []string{"src/c.py"}}}}}

	require.NoError(t, New(cfg, exec).Run(context.Background(), candidates, rep))

	rec := rep.Repos[0]
	assert.Equal(t, 0.0, rec.Queries[0].Metrics.PrecisionAtK)
	assert.Empty(t, rec.Queries[0].Metrics.Hits)
	assert.Equal(t, report.AlertLowPrecision, rec.Alert)
	assert.Equal(t, []string{"repoA"}, rep.Summary.Alerts)
}

func TestRun_IndexFailure(t *testing.T) {
	tests := []struct {
		name   string
		step   fakeStep
		status *string
	}{
		{name: "non-zero exit", step: fakeStep{rc: 1, stdout: okIndex}},
		{name: "empty stdout", step: fakeStep{rc: 0, stdout: ""}},
		{name: "invalid json", step: fakeStep{rc: 0, stdout: "not json"}},
		{name: "error status", step: fakeStep{rc: 0, stdout: `{"status":"error","message":"boom"}`}, status: strPtr("error")},
		{name: "start failure", step: fakeStep{err: errors.New("exec: not found")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repoDir(t)
			other := repoDir(t)
			exec := newFakeExecutor()
			exec.index[repo] = tt.step

			rep := emptyReport()
			candidates := []suite.Candidate{
				{Name: "broken", Path: repo, Queries: []suite.Query{{Query: "q1"}}, NegativeExamples: []suite.NegativeQuery{{Query: "n1"}}},
				{Name: "fine", Path: other, Queries: []suite.Query{{Query: "q2"}}},
			}

			require.NoError(t, New(testConfig(t), exec).Run(context.Background(), candidates, rep))

			require.Len(t, rep.Repos, 2)
			rec := rep.Repos[0]
			require.NotNil(t, rec.Index)
			assert.Equal(t, tt.status, rec.Index.Status)
			assert.Equal(t, report.AlertIndexFailed, rec.Alert)
			assert.Nil(t, rec.Summary)
			assert.Empty(t, rec.Queries)
			assert.NotNil(t, rec.Queries)
			assert.Empty(t, rec.NegativeExamples)

			require.Len(t, exec.searches, 1)
			assert.Equal(t, "q2", exec.searches[0].Query)

			assert.Equal(t, 2, rep.Summary.RepoCount)
			assert.Contains(t, rep.Summary.Alerts, "broken")
		})
	}
}

func TestRun_StartFailureRecordsMinusOne(t *testing.T) {
	repo := repoDir(t)
	exec := newFakeExecutor()
	exec.search["q1"] = fakeStep{err: errors.New("fork failed")}

	rep := emptyReport()
	candidates := []suite.Candidate{{Name: "a", Path: repo, Queries: []suite.Query{{Query: "q1", RelevantFiles: []string{"x"}}}}}
	require.NoError(t, New(testConfig(t), exec).Run(context.Background(), candidates, rep))

	m := rep.Repos[0].Queries[0].Metrics
	assert.Equal(t, -1, m.ReturnCode)
	assert.Equal(t, 0.0, m.PrecisionAtK)
	assert.Empty(t, m.TopFiles)
}

func TestRun_MalformedSearchScoresEmpty(t *testing.T) {
	repo := repoDir(t)
	exec := newFakeExecutor()
	exec.search["q1"] = fakeStep{rc: 3, stdout: okSearch("a.go")}
	exec.search["q2"] = fakeStep{stdout: `{"status":"error"}`}
	exec.search["n1"] = fakeStep{stdout: "garbage"}

	rep := emptyReport()
	candidates := []suite.Candidate{{
		Name:             "a",
		Path:             repo,
		Queries:          []suite.Query{{Query: "q1", RelevantFiles: []string{"a.go"}}, {Query: "q2", RelevantFiles: []string{"a.go"}}},
		NegativeExamples: []suite.NegativeQuery{{Query: "n1"}},
	}}
	require.NoError(t, New(testConfig(t), exec).Run(context.Background(), candidates, rep))

	rec := rep.Repos[0]
	assert.Equal(t, 3, rec.Queries[0].Metrics.ReturnCode)
	assert.Equal(t, 0.0, rec.Queries[0].Metrics.PrecisionAtK)
	assert.Equal(t, 0.0, rec.Queries[1].Metrics.PrecisionAtK)
	assert.False(t, rec.NegativeExamples[0].Metrics.FalsePositive)
}

func TestRun_NegativeFalsePositive(t *testing.T) {
	repo := repoDir(t)
	exec := newFakeExecutor()
	exec.search["q1"] = fakeStep{stdout: okSearch("a.go")}
	exec.search["kubernetes operator"] = fakeStep{stdout: okSearch("deploy/k8s.yaml")}
	exec.search["quantum"] = fakeStep{stdout: okSearch()}

	rep := emptyReport()
	reason := "no k8s"
	candidates := []suite.Candidate{{
		Name:             "a",
		Path:             repo,
		Queries:          []suite.Query{{Query: "q1", RelevantFiles: []string{"a.go"}}},
		NegativeExamples: []suite.NegativeQuery{{Query: "kubernetes operator", Reason: &reason}, {Query: "quantum"}},
	}}
	require.NoError(t, New(testConfig(t), exec).Run(context.Background(), candidates, rep))

	rec := rep.Repos[0]
	require.Len(t, rec.NegativeExamples, 2)
	assert.True(t, rec.NegativeExamples[0].Metrics.FalsePositive)
	assert.Equal(t, []string{"deploy/k8s.yaml"}, rec.NegativeExamples[0].Metrics.TopFiles)
	assert.Equal(t, &reason, rec.NegativeExamples[0].Reason)
	assert.False(t, rec.NegativeExamples[1].Metrics.FalsePositive)
	assert.Equal(t, 1, rec.Summary.NegativeFP)
	assert.Equal(t, report.AlertFalsePositive, rec.Alert)
	assert.Equal(t, 1, rep.Summary.TotalNegativeFP)
}

func TestRun_Resume(t *testing.T) {
	repoA := repoDir(t)
	repoB := repoDir(t)
	exec := newFakeExecutor()
	obs := newRecordingObserver()

	cfg := testConfig(t)
	cfg.Resume = true
	rep := emptyReport()
	rep.Repos = append(rep.Repos, report.RepoRecord{Name: "repoA", Path: repoA})
	candidates := []suite.Candidate{{Name: "repoA", Path: repoA}, {Name: "repoB", Path: repoB}}

	require.NoError(t, New(cfg, exec, WithObserver(obs)).Run(context.Background(), candidates, rep))

	assert.Equal(t, []string{repoB}, exec.indexed)
	assert.Equal(t, "already processed", obs.skipped["repoA"])
	assert.Equal(t, []string{"repoB"}, obs.finished)
	require.Len(t, rep.Repos, 2)
	assert.Equal(t, "repoA", rep.Repos[0].Name)
	assert.Equal(t, "repoB", rep.Repos[1].Name)

	t.Run("finished report adds nothing", func(t *testing.T) {
		exec := newFakeExecutor()
		require.NoError(t, New(cfg, exec).Run(context.Background(), candidates, rep))
		assert.Len(t, rep.Repos, 2)
		assert.Empty(t, exec.indexed)
	})

	t.Run("without resume processed names run again", func(t *testing.T) {
		exec := newFakeExecutor()
		cfg := testConfig(t)
		fresh := emptyReport()
		fresh.Repos = append(fresh.Repos, report.RepoRecord{Name: "repoA"})
		require.NoError(t, New(cfg, exec).Run(context.Background(), candidates[:1], fresh))
		assert.Len(t, fresh.Repos, 2)
	})
}

func TestRun_MissingRepoPath(t *testing.T) {
	exec := newFakeExecutor()
	obs := newRecordingObserver()
	rep := emptyReport()
	present := repoDir(t)
	candidates := []suite.Candidate{
		{Name: "gone", Path: filepath.Join(t.TempDir(), "does-not-exist")},
		{Name: "here", Path: present},
	}

	require.NoError(t, New(testConfig(t), exec, WithObserver(obs)).Run(context.Background(), candidates, rep))

	require.Len(t, rep.Repos, 1)
	assert.Equal(t, "here", rep.Repos[0].Name)
	assert.Contains(t, obs.skipped, "gone")
	assert.Equal(t, 1, rep.Summary.RepoCount)
}

func TestRun_SkipIndex(t *testing.T) {
	repo := repoDir(t)
	indexDir := filepath.Join(repo, ".context")
	require.NoError(t, os.MkdirAll(indexDir, 0o755))

	exec := newFakeExecutor()
	cfg := testConfig(t)
	cfg.SkipIndex = true
	cfg.ResetIndex = true
	rep := emptyReport()
	candidates := []suite.Candidate{{Name: "a", Path: repo, Queries: []suite.Query{{Query: "q"}}}}

	require.NoError(t, New(cfg, exec).Run(context.Background(), candidates, rep))

	assert.Empty(t, exec.indexed)
	assert.Nil(t, rep.Repos[0].Index)
	assert.Len(t, exec.searches, 1)
	assert.DirExists(t, indexDir)
}

func TestRun_ResetIndex(t *testing.T) {
	repo := repoDir(t, "src/keep.go")
	for _, rel := range IndexDirs {
		require.NoError(t, os.MkdirAll(filepath.Join(repo, rel, "shard"), 0o755))
	}

	cfg := testConfig(t)
	cfg.ResetIndex = true
	rep := emptyReport()
	require.NoError(t, New(cfg, newFakeExecutor()).Run(context.Background(), []suite.Candidate{{Name: "a", Path: repo}}, rep))

	for _, rel := range IndexDirs {
		assert.NoDirExists(t, filepath.Join(repo, rel))
	}
	assert.FileExists(t, filepath.Join(repo, "src", "keep.go"))
	assert.DirExists(t, filepath.Join(repo, ".agents", "mcp"))
}

func TestRun_WritesStepLogs(t *testing.T) {
	repo := repoDir(t)
	exec := newFakeExecutor()
	exec.index[repo] = fakeStep{stdout: okIndex, stderr: "indexing..."}
	exec.search["find the config loader"] = fakeStep{stdout: okSearch("a.go"), stderr: "warn"}

	cfg := testConfig(t)
	rep := emptyReport()
	candidates := []suite.Candidate{{
		Name:             "repoA",
		Path:             repo,
		Queries:          []suite.Query{{Query: "find the config loader"}},
		NegativeExamples: []suite.NegativeQuery{{Query: "k8s/helm charts"}},
	}}
	require.NoError(t, New(cfg, exec).Run(context.Background(), candidates, rep))

	dir := filepath.Join(cfg.LogDir, "repoA_20260101T000000Z")
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, okIndex, read("index_stdout.json"))
	assert.Equal(t, "indexing...", read("index_stderr.log"))
	assert.Equal(t, okSearch("a.go"), read("query_find_the_config_loader_stdout.json"))
	assert.Equal(t, "warn", read("query_find_the_config_loader_stderr.log"))
	assert.Equal(t, okSearch(), read("negative_k8s_helm_charts_stdout.json"))
}

func TestRun_LogDirFailureDoesNotStopCandidate(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := testConfig(t)
	cfg.LogDir = blocker
	rep := emptyReport()
	require.NoError(t, New(cfg, newFakeExecutor()).Run(context.Background(), []suite.Candidate{{Name: "a", Path: repoDir(t), Queries: []suite.Query{{Query: "q"}}}}, rep))

	require.Len(t, rep.Repos, 1)
	assert.Len(t, rep.Repos[0].Queries, 1)
}

func TestRun_CheckpointPerCandidate(t *testing.T) {
	var saved []int
	checkpoint := func(r *report.Report) error {
		saved = append(saved, r.Summary.RepoCount)
		return errors.New("disk full")
	}

	rep := emptyReport()
	candidates := []suite.Candidate{{Name: "a", Path: repoDir(t)}, {Name: "b", Path: repoDir(t)}, {Name: "c", Path: repoDir(t)}}
	require.NoError(t, New(testConfig(t), newFakeExecutor(), WithCheckpoint(checkpoint)).Run(context.Background(), candidates, rep))

	assert.Equal(t, []int{1, 2, 3}, saved)
	assert.Len(t, rep.Repos, 3)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := newFakeExecutor()
	exec.onSearch = func(req engine.SearchRequest) {
		if req.Query == "slow" {
			cancel()
		}
	}

	rep := emptyReport()
	candidates := []suite.Candidate{
		{Name: "a", Path: repoDir(t), Queries: []suite.Query{{Query: "fast"}}},
		{Name: "b", Path: repoDir(t), Queries: []suite.Query{{Query: "slow"}, {Query: "never"}}},
		{Name: "c", Path: repoDir(t)},
	}

	err := New(testConfig(t), exec).Run(ctx, candidates, rep)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	require.Len(t, rep.Repos, 1)
	assert.Equal(t, "a", rep.Repos[0].Name)
	assert.Equal(t, 1, rep.Summary.RepoCount)
	assert.Len(t, exec.searches, 2)
}

func TestRun_TraceAndLimit(t *testing.T) {
	repo := repoDir(t)
	exec := newFakeExecutor()
	cfg := testConfig(t)
	cfg.Trace = true
	cfg.Limit = 25

	require.NoError(t, New(cfg, exec).Run(context.Background(), []suite.Candidate{{Name: "a", Path: repo, Queries: []suite.Query{{Query: "q"}}}}, emptyReport()))

	require.Len(t, exec.searches, 1)
	assert.True(t, exec.searches[0].Trace)
	assert.Equal(t, 25, exec.searches[0].Limit)
}

func strPtr(s string) *string { return &s }
