package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
)

var ErrMissingRunID = errors.New("report has no run_id")

var pgSchema = []string{`
CREATE TABLE IF NOT EXISTS bench_runs (
    run_id             TEXT PRIMARY KEY,
    generated_at       TIMESTAMPTZ,
    cli                TEXT NOT NULL,
    limit_n            INTEGER NOT NULL,
    k                  INTEGER NOT NULL,
    profile            TEXT NOT NULL,
    embedding_model    TEXT,
    repo_count         INTEGER NOT NULL,
    avg_precision_at_k DOUBLE PRECISION NOT NULL,
    total_negative_fp  INTEGER NOT NULL,
    alerts             TEXT[] NOT NULL DEFAULT '{}'
)`, `
CREATE TABLE IF NOT EXISTS bench_repos (
    run_id             TEXT NOT NULL REFERENCES bench_runs (run_id) ON DELETE CASCADE,
    name               TEXT NOT NULL,
    avg_precision_at_k DOUBLE PRECISION,
    query_count        INTEGER NOT NULL,
    negative_fp        INTEGER NOT NULL,
    alert              TEXT NOT NULL DEFAULT '',
    index_time_ms      DOUBLE PRECISION,
    index_max_rss_kb   BIGINT,
    index_status       TEXT,
    record             JSONB NOT NULL,
    PRIMARY KEY (run_id, name)
)`,
}

const upsertRun = `
INSERT INTO bench_runs (run_id, generated_at, cli, limit_n, k, profile, embedding_model,
                        repo_count, avg_precision_at_k, total_negative_fp, alerts)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (run_id) DO UPDATE SET
    generated_at       = EXCLUDED.generated_at,
    cli                = EXCLUDED.cli,
    limit_n            = EXCLUDED.limit_n,
    k                  = EXCLUDED.k,
    profile            = EXCLUDED.profile,
    embedding_model    = EXCLUDED.embedding_model,
    repo_count         = EXCLUDED.repo_count,
    avg_precision_at_k = EXCLUDED.avg_precision_at_k,
    total_negative_fp  = EXCLUDED.total_negative_fp,
    alerts             = EXCLUDED.alerts;
`

const upsertRepo = `
INSERT INTO bench_repos (run_id, name, avg_precision_at_k, query_count, negative_fp, alert,
                         index_time_ms, index_max_rss_kb, index_status, record)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id, name) DO UPDATE SET
    avg_precision_at_k = EXCLUDED.avg_precision_at_k,
    query_count        = EXCLUDED.query_count,
    negative_fp        = EXCLUDED.negative_fp,
    alert              = EXCLUDED.alert,
    index_time_ms      = EXCLUDED.index_time_ms,
    index_max_rss_kb   = EXCLUDED.index_max_rss_kb,
    index_status       = EXCLUDED.index_status,
    record             = EXCLUDED.record;
`

// PgPublisher upserts runs and per-repository rows into PostgreSQL.
type PgPublisher struct {
	pool *pgxpool.Pool
}

func NewPgPublisher(ctx context.Context, connStr string) (*PgPublisher, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	p := &PgPublisher{pool: pool}
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *PgPublisher) Name() string { return "postgres" }

func (p *PgPublisher) Close() { p.pool.Close() }

func (p *PgPublisher) EnsureSchema(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (p *PgPublisher) Healthy(ctx context.Context) bool {
	return p.pool.Ping(ctx) == nil
}

// Publish writes the run and all of its repositories in one transaction.
func (p *PgPublisher) Publish(ctx context.Context, r *report.Report) error {
	run, err := runRow(r)
	if err != nil {
		return err
	}
	repos, err := repoRows(r)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertRun, run...); err != nil {
			return fmt.Errorf("failed to upsert run %s: %w", r.RunID, err)
		}

		batch := &pgx.Batch{}
		for _, row := range repos {
			batch.Queue(upsertRepo, row...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert repos for run %s: %w", r.RunID, err)
		}
		return nil
	})
}

func runRow(r *report.Report) ([]any, error) {
	if r.RunID == "" {
		return nil, ErrMissingRunID
	}
	alerts := r.Summary.Alerts
	if alerts == nil {
		alerts = []string{}
	}
	return []any{
		r.RunID,
		generatedAt(r.GeneratedAt),
		r.CLI,
		r.Limit,
		r.K,
		r.Profile,
		r.EmbeddingModel,
		r.Summary.RepoCount,
		r.Summary.AvgPrecisionAtK,
		r.Summary.TotalNegativeFP,
		alerts,
	}, nil
}

func repoRows(r *report.Report) ([][]any, error) {
	rows := make([][]any, 0, len(r.Repos))
	for _, rec := range r.Repos {
		record, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal repo %s: %w", rec.Name, err)
		}

		var avg *float64
		var queryCount, negativeFP int
		if rec.Summary != nil {
			avg = &rec.Summary.AvgPrecisionAtK
			queryCount = rec.Summary.QueryCount
			negativeFP = rec.Summary.NegativeFP
		}

		var indexTime *float64
		var indexRSS *int64
		var indexStatus *string
		if rec.Index != nil {
			indexTime = &rec.Index.TimeMs
			indexRSS = &rec.Index.MaxRSSKB
			indexStatus = rec.Index.Status
		}

		rows = append(rows, []any{
			r.RunID,
			rec.Name,
			avg,
			queryCount,
			negativeFP,
			report.RecordAlert(rec),
			indexTime,
			indexRSS,
			indexStatus,
			record,
		})
	}
	return rows, nil
}

// generatedAt parses the report timestamp. Unparseable values are stored as NULL.
func generatedAt(ts string) *time.Time {
	t, err := time.Parse(report.TimestampLayout, ts)
	if err != nil {
		return nil
	}
	return &t
}
