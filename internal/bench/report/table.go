package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

func WriteTable(r *Report, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Context Benchmark (limit=%d, k=%d, profile=%s) ===\n\n", r.Limit, r.K, r.Profile)

	header := []string{"Repo", "Queries", fmt.Sprintf("P@%d", r.K), "Neg FP", "Index", "p50", "p95", "Peak RSS", "Alert"}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, separator(len(header)))

	for _, rec := range r.Repos {
		row := []string{rec.Name, "-", "-", "-", fmtIndex(rec.Index), "-", "-", fmtKB(PeakRSS(rec)), RecordAlert(rec)}
		if s := rec.Summary; s != nil {
			row[1] = fmt.Sprintf("%d", s.QueryCount)
			row[2] = fmt.Sprintf("%.4f", s.AvgPrecisionAtK)
			row[3] = fmt.Sprintf("%d", s.NegativeFP)
			if s.SearchLatency != nil {
				row[5] = fmtMs(s.SearchLatency.P50)
				row[6] = fmtMs(s.SearchLatency.P95)
			}
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	fmt.Fprintln(tw)
	g := r.Summary
	fmt.Fprintf(tw, "Repos: %d\tAvg P@%d: %.4f\tNegative FP: %d\tAlerts: %s\n",
		g.RepoCount, r.K, g.AvgPrecisionAtK, g.TotalNegativeFP, fmtAlerts(g.Alerts))

	tw.Flush()
}

// PeakRSS returns the largest max_rss_kb seen across every step of a record.
func PeakRSS(rec RepoRecord) int64 {
	var peak int64
	if rec.Index != nil {
		peak = rec.Index.MaxRSSKB
	}
	for _, q := range rec.Queries {
		peak = max(peak, q.Metrics.MaxRSSKB)
	}
	for _, n := range rec.NegativeExamples {
		peak = max(peak, n.Metrics.MaxRSSKB)
	}
	return peak
}

func separator(n int) string {
	sep := make([]string, n)
	for i := range sep {
		sep[i] = "---"
	}
	return strings.Join(sep, "\t")
}

func fmtIndex(idx *IndexOutcome) string {
	if idx == nil {
		return "skipped"
	}
	if idx.ReturnCode != 0 {
		return fmt.Sprintf("rc=%d", idx.ReturnCode)
	}
	return fmtMs(idx.TimeMs)
}

func fmtMs(ms float64) string {
	if ms == 0 {
		return "-"
	}
	if ms < 1000 {
		return fmt.Sprintf("%.1fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

func fmtKB(kb int64) string {
	switch {
	case kb == 0:
		return "-"
	case kb < 1024:
		return fmt.Sprintf("%dKB", kb)
	case kb < 1024*1024:
		return fmt.Sprintf("%.1fMB", float64(kb)/1024)
	default:
		return fmt.Sprintf("%.2fGB", float64(kb)/(1024*1024))
	}
}

func fmtAlerts(alerts []string) string {
	if len(alerts) == 0 {
		return "none"
	}
	return strings.Join(alerts, ", ")
}
