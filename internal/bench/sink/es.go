package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
)

const esDateFormat = "basic_date_time_no_millis"

// EsPublisher indexes one document per repository record.
type EsPublisher struct {
	client *elasticsearch.TypedClient
	index  string
}

// repoDocument is the flattened record stored in Elasticsearch.
type repoDocument struct {
	RunID           string   `json:"run_id"`
	GeneratedAt     string   `json:"generated_at,omitempty"`
	CLI             string   `json:"cli"`
	Profile         string   `json:"profile"`
	EmbeddingModel  *string  `json:"embedding_model"`
	Limit           int      `json:"limit"`
	K               int      `json:"k"`
	Name            string   `json:"name"`
	Path            string   `json:"path"`
	AvgPrecisionAtK *float64 `json:"avg_precision_at_k"`
	QueryCount      int      `json:"query_count"`
	NegativeFP      int      `json:"negative_fp"`
	Alert           string   `json:"alert"`
	IndexTimeMs     *float64 `json:"index_time_ms"`
	IndexStatus     *string  `json:"index_status"`
	PeakRSSKB       int64    `json:"peak_rss_kb"`
	SearchP50Ms     *float64 `json:"search_p50_ms"`
	SearchP95Ms     *float64 `json:"search_p95_ms"`
}

func (d repoDocument) ID() string {
	return d.RunID + ":" + d.Name
}

func newClient(cfg EsConfig) (*elasticsearch.TypedClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}

	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	return elasticsearch.NewTypedClient(esCfg)
}

func NewEsPublisher(ctx context.Context, cfg EsConfig) (*EsPublisher, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	p := &EsPublisher{client: client, index: cfg.Index}
	if err := p.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}
	return p, nil
}

func (p *EsPublisher) Name() string { return "elasticsearch" }

func (p *EsPublisher) Close() {}

func (p *EsPublisher) EnsureIndex(ctx context.Context) error {
	exists, err := p.client.Indices.Exists(p.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Debug("index already exists", "index", p.index)
		return nil
	}

	res, err := p.client.Indices.Create(p.index).Mappings(repoMappings()).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("index created", "index", p.index)
	return nil
}

func repoMappings() *types.TypeMapping {
	generatedAt := types.NewDateProperty()
	format := esDateFormat
	generatedAt.Format = &format

	path := types.NewTextProperty()
	path.Fields = map[string]types.Property{
		"keyword": types.NewKeywordProperty(),
	}

	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"run_id":             types.NewKeywordProperty(),
			"generated_at":       generatedAt,
			"cli":                types.NewKeywordProperty(),
			"profile":            types.NewKeywordProperty(),
			"embedding_model":    types.NewKeywordProperty(),
			"limit":              types.NewIntegerNumberProperty(),
			"k":                  types.NewIntegerNumberProperty(),
			"name":               types.NewKeywordProperty(),
			"path":               path,
			"avg_precision_at_k": types.NewFloatNumberProperty(),
			"query_count":        types.NewIntegerNumberProperty(),
			"negative_fp":        types.NewIntegerNumberProperty(),
			"alert":              types.NewKeywordProperty(),
			"index_time_ms":      types.NewFloatNumberProperty(),
			"index_status":       types.NewKeywordProperty(),
			"peak_rss_kb":        types.NewLongNumberProperty(),
			"search_p50_ms":      types.NewFloatNumberProperty(),
			"search_p95_ms":      types.NewFloatNumberProperty(),
		},
	}
}

func (p *EsPublisher) Publish(ctx context.Context, r *report.Report) error {
	if r.RunID == "" {
		return ErrMissingRunID
	}
	docs := repoDocuments(r)
	if len(docs) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         p.index,
		Client:        p.client,
		NumWorkers:    2,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var successful, failed atomic.Int64
	for _, doc := range docs {
		body, err := json.Marshal(doc)
		if err != nil {
			failed.Add(1)
			slog.Error("failed to marshal document", "error", err, "id", doc.ID())
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID(),
			Body:       bytes.NewReader(body),
			OnSuccess: func(context.Context, esutil.BulkIndexerItem, esutil.BulkIndexerResponseItem) {
				successful.Add(1)
			},
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed.Add(1)
			slog.Error("failed to add document to bulk indexer", "error", err, "id", doc.ID())
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	slog.Info("bulk indexing completed",
		"successful", successful.Load(),
		"failed", failed.Load(),
		"total", len(docs),
		"index", p.index)

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("failed to index %d out of %d repo documents", n, len(docs))
	}
	return nil
}

func repoDocuments(r *report.Report) []repoDocument {
	docs := make([]repoDocument, 0, len(r.Repos))
	for _, rec := range r.Repos {
		doc := repoDocument{
			RunID:          r.RunID,
			GeneratedAt:    r.GeneratedAt,
			CLI:            r.CLI,
			Profile:        r.Profile,
			EmbeddingModel: r.EmbeddingModel,
			Limit:          r.Limit,
			K:              r.K,
			Name:           rec.Name,
			Path:           rec.Path,
			Alert:          report.RecordAlert(rec),
			PeakRSSKB:      report.PeakRSS(rec),
		}
		if s := rec.Summary; s != nil {
			avg := s.AvgPrecisionAtK
			doc.AvgPrecisionAtK = &avg
			doc.QueryCount = s.QueryCount
			doc.NegativeFP = s.NegativeFP
			if s.SearchLatency != nil {
				p50, p95 := s.SearchLatency.P50, s.SearchLatency.P95
				doc.SearchP50Ms = &p50
				doc.SearchP95Ms = &p95
			}
		}
		if rec.Index != nil {
			t := rec.Index.TimeMs
			doc.IndexTimeMs = &t
			doc.IndexStatus = rec.Index.Status
		}
		docs = append(docs, doc)
	}
	return docs
}
