package report

import "strings"

const (
	PrecisionAlertThreshold = 0.9

	AlertLowPrecision  = "precision<0.9"
	AlertFalsePositive = "false positives"
	AlertIndexFailed   = "index failed"
)

// SummarizeRepo computes the per-repository summary from its query and
// negative outcomes.
func SummarizeRepo(rec RepoRecord) RepoSummary {
	s := RepoSummary{QueryCount: len(rec.Queries)}

	var latencies []float64
	if len(rec.Queries) > 0 {
		var sum float64
		for _, q := range rec.Queries {
			sum += q.Metrics.PrecisionAtK
			latencies = append(latencies, q.Metrics.TimeMs)
		}
		s.AvgPrecisionAtK = sum / float64(len(rec.Queries))
	}

	for _, n := range rec.NegativeExamples {
		if n.Metrics.FalsePositive {
			s.NegativeFP++
		}
		latencies = append(latencies, n.Metrics.TimeMs)
	}

	var alerts []string
	if s.QueryCount > 0 && s.AvgPrecisionAtK < PrecisionAlertThreshold {
		alerts = append(alerts, AlertLowPrecision)
	}
	if s.NegativeFP > 0 {
		alerts = append(alerts, AlertFalsePositive)
	}
	s.Alert = strings.Join(alerts, "; ")

	if len(latencies) > 0 {
		stats := ComputeLatencyStats(latencies)
		s.SearchLatency = &stats
	}

	return s
}

// Finalize attaches the summary to the record and copies a non-empty alert up.
func Finalize(rec *RepoRecord) {
	s := SummarizeRepo(*rec)
	rec.Summary = &s
	if s.Alert != "" {
		rec.Alert = s.Alert
	}
}

// BuildSummary aggregates all repository records. Records without a summary
// (failed index) count towards repo_count and alerts but not the mean.
func BuildSummary(r *Report) GlobalSummary {
	g := GlobalSummary{
		RepoCount: len(r.Repos),
		Alerts:    []string{},
	}

	var sum float64
	var summarized int
	for _, rec := range r.Repos {
		if rec.Summary != nil {
			sum += rec.Summary.AvgPrecisionAtK
			g.TotalNegativeFP += rec.Summary.NegativeFP
			summarized++
		}
		if rec.Alert != "" || (rec.Summary != nil && rec.Summary.Alert != "") {
			g.Alerts = append(g.Alerts, rec.Name)
		}
	}
	if summarized > 0 {
		g.AvgPrecisionAtK = sum / float64(summarized)
	}

	return g
}

// RecordAlert returns the record's alert, falling back to its summary.
func RecordAlert(rec RepoRecord) string {
	if rec.Alert != "" {
		return rec.Alert
	}
	if rec.Summary != nil {
		return rec.Summary.Alert
	}
	return ""
}
