package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DjordjeVuckovic/context-bench/internal/apperr"
	"github.com/DjordjeVuckovic/context-bench/internal/bench/report"
)

// ReportInfo is the listing entry for one stored report.
type ReportInfo struct {
	Name            string   `json:"name"`
	RunID           string   `json:"run_id"`
	GeneratedAt     string   `json:"generated_at"`
	RepoCount       int      `json:"repo_count"`
	AvgPrecisionAtK float64  `json:"avg_precision_at_k"`
	Alerts          []string `json:"alerts"`
}

type RepoAlert struct {
	Name  string `json:"name"`
	Alert string `json:"alert"`
}

// ReportDir reads reports written by the harness into one directory.
type ReportDir struct {
	dir string
}

func NewReportDir(dir string) *ReportDir {
	return &ReportDir{dir: dir}
}

func (d *ReportDir) Dir() string {
	return d.dir
}

// List returns every readable report, newest first.
func (d *ReportDir) List() ([]ReportInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ReportInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	infos := make([]ReportInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		r, err := report.Load(filepath.Join(d.dir, e.Name()))
		if err != nil {
			slog.Warn("skipping unreadable report", "name", e.Name(), "error", err)
			continue
		}
		alerts := r.Summary.Alerts
		if alerts == nil {
			alerts = []string{}
		}
		infos = append(infos, ReportInfo{
			Name:            e.Name(),
			RunID:           r.RunID,
			GeneratedAt:     r.GeneratedAt,
			RepoCount:       r.Summary.RepoCount,
			AvgPrecisionAtK: r.Summary.AvgPrecisionAtK,
			Alerts:          alerts,
		})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].GeneratedAt != infos[j].GeneratedAt {
			return infos[i].GeneratedAt > infos[j].GeneratedAt
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

// Get loads one report by its file name.
func (d *ReportDir) Get(name string) (*report.Report, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	r, err := report.Load(filepath.Join(d.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NewNotFound("report", name)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Alerts lists the records that carry an alert, in report order.
func Alerts(r *report.Report) []RepoAlert {
	alerts := []RepoAlert{}
	for _, rec := range r.Repos {
		if a := report.RecordAlert(rec); a != "" {
			alerts = append(alerts, RepoAlert{Name: rec.Name, Alert: a})
		}
	}
	return alerts
}

// ValidateName accepts only a plain *.json file name inside the results dir.
func ValidateName(name string) error {
	switch {
	case name == "":
		return apperr.NewValidation("report name is required")
	case strings.ContainsAny(name, `/\`) || name != filepath.Base(name):
		return apperr.NewValidation("report name must be a plain file name")
	case strings.HasPrefix(name, "."):
		return apperr.NewValidation("report name must not start with a dot")
	case filepath.Ext(name) != ".json":
		return apperr.NewValidation("report name must end with .json")
	}
	return nil
}
