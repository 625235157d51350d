package report

import (
	"encoding/json"
	"runtime"
	"time"
)

// TimestampLayout is used for generated_at, log directory names and default
// report file names.
const TimestampLayout = "20060102T150405Z"

const DefaultProfile = "general"

type Report struct {
	RunID          string          `json:"run_id,omitempty"`
	GeneratedAt    string          `json:"generated_at"`
	CLI            string          `json:"cli"`
	Limit          int             `json:"limit"`
	K              int             `json:"k"`
	Profile        string          `json:"profile"`
	EmbeddingModel *string         `json:"embedding_model"`
	Environment    EnvironmentInfo `json:"environment"`
	Repos          []RepoRecord    `json:"repos"`
	Summary        GlobalSummary   `json:"summary"`

	extra map[string]json.RawMessage
}

// Header carries the invocation parameters written at the top of a report.
type Header struct {
	RunID          string
	GeneratedAt    time.Time
	CLI            string
	Limit          int
	K              int
	Profile        string
	EmbeddingModel *string
}

func New(h Header) *Report {
	r := &Report{Repos: []RepoRecord{}}
	r.ApplyHeader(h)
	return r
}

// ApplyHeader overwrites the invocation fields. Repos and an existing run id
// are left untouched so a resumed report keeps its identity and everything
// that was already collected.
func (r *Report) ApplyHeader(h Header) {
	if r.RunID == "" {
		r.RunID = h.RunID
	}
	r.GeneratedAt = FormatTimestamp(h.GeneratedAt)
	r.CLI = h.CLI
	r.Limit = h.Limit
	r.K = h.K
	r.Profile = h.Profile
	if r.Profile == "" {
		r.Profile = DefaultProfile
	}
	r.EmbeddingModel = h.EmbeddingModel
	r.Environment = NewEnvironmentInfo()
	if r.Repos == nil {
		r.Repos = []RepoRecord{}
	}
}

// Processed returns the names of all recorded repositories.
func (r *Report) Processed() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Repos))
	for _, rec := range r.Repos {
		names[rec.Name] = struct{}{}
	}
	return names
}

// Repo looks up a record by name.
func (r *Report) Repo(name string) (RepoRecord, bool) {
	for _, rec := range r.Repos {
		if rec.Name == name {
			return rec, true
		}
	}
	return RepoRecord{}, false
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
}

func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
}

type RepoRecord struct {
	Name             string            `json:"name"`
	Path             string            `json:"path"`
	Files            *int              `json:"files"`
	LanguageCount    *int              `json:"language_count"`
	Index            *IndexOutcome     `json:"index"`
	Queries          []QueryOutcome    `json:"queries"`
	NegativeExamples []NegativeOutcome `json:"negative_examples"`
	Summary          *RepoSummary      `json:"summary,omitempty"`
	Alert            string            `json:"alert,omitempty"`

	raw json.RawMessage
}

type IndexOutcome struct {
	TimeMs     float64 `json:"time_ms"`
	MaxRSSKB   int64   `json:"max_rss_kb"`
	ReturnCode int     `json:"returncode"`
	Status     *string `json:"status"`
}

type QueryOutcome struct {
	Query           string       `json:"query"`
	Type            *string      `json:"type"`
	Difficulty      *string      `json:"difficulty"`
	ExpectedSnippet *string      `json:"expected_snippet"`
	Metrics         QueryMetrics `json:"metrics"`
}

type QueryMetrics struct {
	TimeMs         float64  `json:"time_ms"`
	MaxRSSKB       int64    `json:"max_rss_kb"`
	PrecisionAtK   float64  `json:"precision_at_k"`
	Hits           []string `json:"hits"`
	TopFiles       []string `json:"top_files"`
	ReturnCode     int      `json:"returncode"`
	RecallAtK      float64  `json:"recall_at_k"`
	ReciprocalRank float64  `json:"reciprocal_rank"`
}

type NegativeOutcome struct {
	Query   string          `json:"query"`
	Reason  *string         `json:"reason"`
	Metrics NegativeMetrics `json:"metrics"`
}

type NegativeMetrics struct {
	TimeMs        float64  `json:"time_ms"`
	MaxRSSKB      int64    `json:"max_rss_kb"`
	FalsePositive bool     `json:"false_positive"`
	TopFiles      []string `json:"top_files"`
	ReturnCode    int      `json:"returncode"`
}

type RepoSummary struct {
	AvgPrecisionAtK float64       `json:"avg_precision_at_k"`
	QueryCount      int           `json:"query_count"`
	NegativeFP      int           `json:"negative_fp"`
	Alert           string        `json:"alert"`
	SearchLatency   *LatencyStats `json:"search_latency,omitempty"`
}

type GlobalSummary struct {
	RepoCount       int      `json:"repo_count"`
	AvgPrecisionAtK float64  `json:"avg_precision_at_k"`
	TotalNegativeFP int      `json:"total_negative_fp"`
	Alerts          []string `json:"alerts"`
}
