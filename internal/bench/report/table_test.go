package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteTable(t *testing.T) {
	r := sampleReport()
	failed := RepoRecord{Name: "broken", Index: &IndexOutcome{ReturnCode: 2}, Alert: AlertIndexFailed, Queries: []QueryOutcome{}, NegativeExamples: []NegativeOutcome{}}
	r.Repos = append(r.Repos, failed)
	r.Summary = BuildSummary(r)

	var buf bytes.Buffer
	WriteTable(r, &buf)
	out := buf.String()

	assert.Contains(t, out, "Context Benchmark (limit=10, k=5, profile=general)")
	assert.Contains(t, out, "P@5")
	assert.Contains(t, out, "repoA")
	assert.Contains(t, out, "0.5000")
	assert.Contains(t, out, "1.23s")
	assert.Contains(t, out, "2.0MB")
	assert.Contains(t, out, "rc=2")
	assert.Contains(t, out, "index failed")
	assert.Contains(t, out, "Alerts: repoA, broken")
}

func TestPeakRSS(t *testing.T) {
	rec := RepoRecord{
		Index:            &IndexOutcome{MaxRSSKB: 100},
		Queries:          []QueryOutcome{{Metrics: QueryMetrics{MaxRSSKB: 300}}},
		NegativeExamples: []NegativeOutcome{{Metrics: NegativeMetrics{MaxRSSKB: 200}}},
	}
	assert.Equal(t, int64(300), PeakRSS(rec))
	assert.Zero(t, PeakRSS(RepoRecord{}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "-", fmtMs(0))
	assert.Equal(t, "12.5ms", fmtMs(12.5))
	assert.Equal(t, "2.50s", fmtMs(2500))
	assert.Equal(t, "512KB", fmtKB(512))
	assert.Equal(t, "1.50GB", fmtKB(1536*1024))
	assert.Equal(t, "skipped", fmtIndex(nil))
	assert.Equal(t, "none", fmtAlerts(nil))
}
