package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
)

// Publisher ships a finished report to an external store.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, r *report.Report) error
	Close()
}

// Open connects every configured sink. Sinks that fail to connect are
// reported in the returned error; the ones that did connect are still
// returned and must be closed by the caller.
func Open(ctx context.Context, cfg Config) ([]Publisher, error) {
	var pubs []Publisher
	var errs []error

	if cfg.PgURL != "" {
		pg, err := NewPgPublisher(ctx, cfg.PgURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("postgres sink: %w", err))
		} else {
			pubs = append(pubs, pg)
		}
	}

	if len(cfg.Es.Addresses) > 0 {
		es, err := NewEsPublisher(ctx, cfg.Es)
		if err != nil {
			errs = append(errs, fmt.Errorf("elasticsearch sink: %w", err))
		} else {
			pubs = append(pubs, es)
		}
	}

	return pubs, errors.Join(errs...)
}

// PublishAll runs every publisher in order. A failing publisher does not stop
// the others.
func PublishAll(ctx context.Context, pubs []Publisher, r *report.Report) error {
	var errs []error
	for _, p := range pubs {
		if err := p.Publish(ctx, r); err != nil {
			slog.Error("publish report failed", "sink", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		slog.Info("report published", "sink", p.Name(), "run_id", r.RunID, "repos", len(r.Repos))
	}
	return errors.Join(errs...)
}

func CloseAll(pubs []Publisher) {
	for _, p := range pubs {
		p.Close()
	}
}
