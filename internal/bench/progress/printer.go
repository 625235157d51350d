package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/engine"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
)

var isTerminal = term.IsTerminal

// Printer writes the textual progress lines of a run. Lines are colored only
// when the writer is a terminal and NO_COLOR is unset.
type Printer struct {
	w      io.Writer
	styled bool

	tag   lipgloss.Style
	dim   lipgloss.Style
	good  lipgloss.Style
	alert lipgloss.Style
}

func New(w io.Writer) *Printer {
	return newPrinter(w, shouldUseStyling(w))
}

// NewPlain returns a printer that never emits escape codes.
func NewPlain(w io.Writer) *Printer {
	return newPrinter(w, false)
}

func newPrinter(w io.Writer, styled bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		styled: styled,
		tag:    r.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		dim:    r.NewStyle().Foreground(lipgloss.Color("244")),
		good:   r.NewStyle().Foreground(lipgloss.Color("42")),
		alert:  r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func shouldUseStyling(w io.Writer) bool {
	if w == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return isTerminal(int(fder.Fd()))
	}
	return false
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(p.tag, "[bench]"), fmt.Sprintf(format, args...))
}

// Heartbeat matches engine.HeartbeatFunc.
func (p *Printer) Heartbeat(label string, elapsed time.Duration) {
	fmt.Fprintln(p.w, p.render(p.dim, engine.FormatHeartbeat(label, elapsed)))
}

func (p *Printer) CandidateStarted(name string, position, total int) {
	p.line("(%d/%d) %s", position, total, name)
}

func (p *Printer) CandidateSkipped(name, reason string) {
	p.line("skipping %s (%s)", name, reason)
}

func (p *Printer) CandidateFinished(rec report.RepoRecord) {
	if rec.Summary == nil {
		rc := 0
		if rec.Index != nil {
			rc = rec.Index.ReturnCode
		}
		p.line("%s %s", rec.Name, p.render(p.alert, fmt.Sprintf("%s (returncode=%d)", report.RecordAlert(rec), rc)))
		return
	}

	s := rec.Summary
	status := p.render(p.good, "ok")
	if alert := report.RecordAlert(rec); alert != "" {
		status = p.render(p.alert, alert)
	}
	p.line("%s done: avg_precision_at_k=%.4f queries=%d negative_fp=%d %s",
		rec.Name, s.AvgPrecisionAtK, s.QueryCount, s.NegativeFP, status)
}

func (p *Printer) Saved(path string) {
	fmt.Fprintf(p.w, "Benchmark report saved to %s\n", path)
}
