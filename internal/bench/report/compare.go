package report

import (
	"fmt"
	"io"
)

// Stats is the flat view of one report used by the comparison output.
type Stats struct {
	RepoCount       int
	QueryCount      int
	AvgPrecisionAtK float64
	TotalNegativeFP int
	AlertCount      int
	LatencyP50      float64
	LatencyP95      float64
	LatencyMax      float64
	PeakRSSKB       int64
}

type RepoDelta struct {
	Name     string
	Current  float64
	Previous float64
}

func (d RepoDelta) Delta() float64 {
	return d.Current - d.Previous
}

type Comparison struct {
	Current  Stats
	Previous Stats
	Repos    []RepoDelta
}

// Summarize recomputes the global figures from the records so reports written
// by older runs compare on equal terms.
func Summarize(r *Report) Stats {
	g := BuildSummary(r)
	s := Stats{
		RepoCount:       g.RepoCount,
		AvgPrecisionAtK: g.AvgPrecisionAtK,
		TotalNegativeFP: g.TotalNegativeFP,
		AlertCount:      len(g.Alerts),
	}

	var latencies []float64
	for _, rec := range r.Repos {
		s.QueryCount += len(rec.Queries)
		for _, q := range rec.Queries {
			latencies = append(latencies, q.Metrics.TimeMs)
		}
		for _, n := range rec.NegativeExamples {
			latencies = append(latencies, n.Metrics.TimeMs)
		}
		s.PeakRSSKB = max(s.PeakRSSKB, PeakRSS(rec))
	}
	s.LatencyP50 = IndexPercentile(latencies, 50)
	s.LatencyP95 = IndexPercentile(latencies, 95)
	s.LatencyMax = IndexPercentile(latencies, 100)

	return s
}

func Compare(current, previous *Report) Comparison {
	c := Comparison{
		Current:  Summarize(current),
		Previous: Summarize(previous),
	}

	for _, rec := range current.Repos {
		if rec.Summary == nil {
			continue
		}
		prev, ok := previous.Repo(rec.Name)
		if !ok || prev.Summary == nil {
			continue
		}
		c.Repos = append(c.Repos, RepoDelta{
			Name:     rec.Name,
			Current:  rec.Summary.AvgPrecisionAtK,
			Previous: prev.Summary.AvgPrecisionAtK,
		})
	}

	return c
}

func WriteComparison(w io.Writer, c Comparison) {
	writeStats(w, "current", c.Current)
	writeStats(w, "previous", c.Previous)

	cur, prev := c.Current, c.Previous
	fmt.Fprintln(w, "delta (current - previous):")
	fmt.Fprintf(w, "  repos: %+d\n", cur.RepoCount-prev.RepoCount)
	fmt.Fprintf(w, "  queries: %+d\n", cur.QueryCount-prev.QueryCount)
	fmt.Fprintf(w, "  avg_precision_at_k: %+.4f\n", cur.AvgPrecisionAtK-prev.AvgPrecisionAtK)
	fmt.Fprintf(w, "  negative_fp: %+d\n", cur.TotalNegativeFP-prev.TotalNegativeFP)
	fmt.Fprintf(w, "  alerts: %+d\n", cur.AlertCount-prev.AlertCount)
	fmt.Fprintf(w, "  search_latency_ms p50=%+.1f p95=%+.1f max=%+.1f\n",
		cur.LatencyP50-prev.LatencyP50, cur.LatencyP95-prev.LatencyP95, cur.LatencyMax-prev.LatencyMax)
	fmt.Fprintf(w, "  peak_rss_kb: %+d\n", cur.PeakRSSKB-prev.PeakRSSKB)

	if len(c.Repos) == 0 {
		return
	}
	fmt.Fprintln(w, "per-repo avg_precision_at_k:")
	for _, d := range c.Repos {
		fmt.Fprintf(w, "  %s: %.4f -> %.4f (%+.4f)\n", d.Name, d.Previous, d.Current, d.Delta())
	}
}

func writeStats(w io.Writer, label string, s Stats) {
	fmt.Fprintf(w, "%s:\n", label)
	fmt.Fprintf(w, "  repos=%d queries=%d avg_precision_at_k=%.4f negative_fp=%d alerts=%d\n",
		s.RepoCount, s.QueryCount, s.AvgPrecisionAtK, s.TotalNegativeFP, s.AlertCount)
	fmt.Fprintf(w, "  search_latency_ms p50=%.1f p95=%.1f max=%.1f\n", s.LatencyP50, s.LatencyP95, s.LatencyMax)
	fmt.Fprintf(w, "  peak_rss_kb=%d\n", s.PeakRSSKB)
}
