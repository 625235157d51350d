package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/engine"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/metrics"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/suite"
)

var ErrRepoMissing = errors.New("repository path does not exist")

// Observer receives candidate lifecycle events in processing order.
type Observer interface {
	CandidateStarted(name string, position, total int)
	CandidateSkipped(name, reason string)
	CandidateFinished(rec report.RepoRecord)
}

type nopObserver struct{}

func (nopObserver) CandidateStarted(string, int, int)   {}
func (nopObserver) CandidateSkipped(string, string)     {}
func (nopObserver) CandidateFinished(report.RepoRecord) {}

// CheckpointFunc persists the report after each recorded candidate.
type CheckpointFunc func(*report.Report) error

type Runner struct {
	config     Config
	executor   engine.Executor
	observer   Observer
	checkpoint CheckpointFunc
}

type Option func(*Runner)

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

func WithCheckpoint(fn CheckpointFunc) Option {
	return func(r *Runner) {
		r.checkpoint = fn
	}
}

func New(cfg Config, executor engine.Executor, opts ...Option) *Runner {
	r := &Runner{
		config:   cfg,
		executor: executor,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes the selected candidates one by one and appends a record per
// processed candidate to rep. The global summary is rebuilt before returning,
// also when ctx is cancelled part way through.
func (r *Runner) Run(ctx context.Context, candidates []suite.Candidate, rep *report.Report) error {
	defer func() { rep.Summary = report.BuildSummary(rep) }()

	selected, found := Select(candidates, r.config.Include, r.config.StartFrom)
	if !found {
		slog.Warn("start-from candidate not found, nothing selected", "start_from", r.config.StartFrom)
	}

	processed := rep.Processed()
	for i, c := range selected {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted before %s: %w", c.Name, err)
		}

		if _, done := processed[c.Name]; done && r.config.Resume {
			r.observer.CandidateSkipped(c.Name, "already processed")
			continue
		}

		r.observer.CandidateStarted(c.Name, i+1, len(selected))
		rec, err := r.RunCandidate(ctx, c)
		if errors.Is(err, ErrRepoMissing) {
			slog.Warn("skip missing repo", "repo", c.Name, "error", err)
			r.observer.CandidateSkipped(c.Name, "missing repo path")
			continue
		}
		if err != nil {
			return fmt.Errorf("run interrupted during %s: %w", c.Name, err)
		}

		rep.Repos = append(rep.Repos, rec)
		processed[c.Name] = struct{}{}
		r.observer.CandidateFinished(rec)
		r.saveCheckpoint(rep)
	}

	return nil
}

func (r *Runner) saveCheckpoint(rep *report.Report) {
	if r.checkpoint == nil {
		return
	}
	rep.Summary = report.BuildSummary(rep)
	if err := r.checkpoint(rep); err != nil {
		slog.Warn("checkpoint failed", "error", err)
	}
}

// RunCandidate indexes, queries and scores one candidate. It returns
// ErrRepoMissing when the repository path does not exist, and the context
// error when ctx is cancelled before the candidate completes. An index failure
// is not an error: the record carries the index outcome and an alert.
func (r *Runner) RunCandidate(ctx context.Context, c suite.Candidate) (report.RepoRecord, error) {
	repoPath, err := c.RepoPath()
	if err != nil {
		return report.RepoRecord{}, fmt.Errorf("%w: %s: %v", ErrRepoMissing, c.Path, err)
	}
	if _, err := os.Stat(repoPath); err != nil {
		return report.RepoRecord{}, fmt.Errorf("%w: %s", ErrRepoMissing, repoPath)
	}

	logs := newStepLogs(RepoLogDir(r.config.LogDir, c.Name, r.config.Timestamp), c.Name)
	rec := report.RepoRecord{
		Name:             c.Name,
		Path:             repoPath,
		Files:            c.Files,
		LanguageCount:    c.LanguageCount,
		Queries:          []report.QueryOutcome{},
		NegativeExamples: []report.NegativeOutcome{},
	}

	state := StatePending
	move := func(next State) {
		slog.Debug("candidate state", "repo", c.Name, "from", state, "to", next, "terminal", next.Terminal())
		state = next
	}

	if !r.config.SkipIndex {
		if r.config.ResetIndex {
			resetIndex(repoPath)
		}
		move(StateIndexing)
		ok, err := r.index(ctx, c.Name, repoPath, logs, &rec)
		if err != nil {
			return report.RepoRecord{}, err
		}
		if !ok {
			move(StateIndexFailed)
			rec.Alert = report.AlertIndexFailed
			return rec, nil
		}
	}

	move(StateQuerying)
	for _, q := range c.Queries {
		outcome, err := r.query(ctx, c.Name, repoPath, q, logs)
		if err != nil {
			return report.RepoRecord{}, err
		}
		rec.Queries = append(rec.Queries, outcome)
	}

	move(StateScoringNegatives)
	for _, n := range c.NegativeExamples {
		outcome, err := r.negative(ctx, c.Name, repoPath, n, logs)
		if err != nil {
			return report.RepoRecord{}, err
		}
		rec.NegativeExamples = append(rec.NegativeExamples, outcome)
	}

	report.Finalize(&rec)
	move(StateSummarized)
	return rec, nil
}

func (r *Runner) index(ctx context.Context, name, repoPath string, logs *stepLogs, rec *report.RepoRecord) (bool, error) {
	res, resp, err := r.executor.Index(ctx, repoPath, "index:"+name)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		slog.Warn("index command failed to start", "repo", name, "error", err)
	}
	logs.write("index", res)

	rec.Index = &report.IndexOutcome{
		TimeMs:     res.TimeMs,
		MaxRSSKB:   res.MaxRSSKB,
		ReturnCode: res.ReturnCode,
		Status:     resp.Status,
	}
	if !resp.OK() {
		slog.Warn("index failed", "repo", name, "returncode", res.ReturnCode, "kind", resp.Kind, "reason", resp.Reason)
		return false, nil
	}
	return true, nil
}

func (r *Runner) search(ctx context.Context, name, repoPath, query, step string, logs *stepLogs) (engine.CommandResult, []string, error) {
	res, resp, err := r.executor.Search(ctx, engine.SearchRequest{
		Query:   query,
		Limit:   r.config.Limit,
		Project: repoPath,
		Trace:   r.config.Trace,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, nil, ctxErr
	}
	if err != nil {
		slog.Warn("search command failed to start", "repo", name, "query", query, "error", err)
	}
	logs.write(step, res)

	if !resp.OK() {
		slog.Warn("search returned no usable results", "repo", name, "query", query,
			"returncode", res.ReturnCode, "kind", resp.Kind, "reason", resp.Reason)
	}
	return res, resp.Files(), nil
}

func (r *Runner) query(ctx context.Context, name, repoPath string, q suite.Query, logs *stepLogs) (report.QueryOutcome, error) {
	res, files, err := r.search(ctx, name, repoPath, q.Query, "query_"+LogPrefix(q.Query), logs)
	if err != nil {
		return report.QueryOutcome{}, err
	}

	scored := metrics.Precision(files, q.RelevantFiles, repoPath, r.config.K)
	return report.QueryOutcome{
		Query:           q.Query,
		Type:            q.Type,
		Difficulty:      q.Difficulty,
		ExpectedSnippet: q.ExpectedSnippet,
		Metrics: report.QueryMetrics{
			TimeMs:         res.TimeMs,
			MaxRSSKB:       res.MaxRSSKB,
			PrecisionAtK:   scored.PrecisionAtK,
			Hits:           scored.Hits,
			TopFiles:       scored.TopFiles,
			ReturnCode:     res.ReturnCode,
			RecallAtK:      scored.RecallAtK,
			ReciprocalRank: scored.ReciprocalRank,
		},
	}, nil
}

func (r *Runner) negative(ctx context.Context, name, repoPath string, n suite.NegativeQuery, logs *stepLogs) (report.NegativeOutcome, error) {
	res, files, err := r.search(ctx, name, repoPath, n.Query, "negative_"+LogPrefix(n.Query), logs)
	if err != nil {
		return report.NegativeOutcome{}, err
	}

	scored := metrics.EvaluateNegative(files, repoPath, r.config.K)
	return report.NegativeOutcome{
		Query:  n.Query,
		Reason: n.Reason,
		Metrics: report.NegativeMetrics{
			TimeMs:        res.TimeMs,
			MaxRSSKB:      res.MaxRSSKB,
			FalsePositive: scored.FalsePositive,
			TopFiles:      scored.TopFiles,
			ReturnCode:    res.ReturnCode,
		},
	}, nil
}
