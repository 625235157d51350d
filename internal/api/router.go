package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DjordjeVuckovic/context-bench/internal/apperr"
	"github.com/DjordjeVuckovic/context-bench/pkg/pagination"
)

type ReportRouter struct {
	e       *echo.Echo
	reports *ReportDir
}

func NewReportRouter(e *echo.Echo, reports *ReportDir) *ReportRouter {
	return &ReportRouter{
		e:       e,
		reports: reports,
	}
}

func (r *ReportRouter) Bind() {
	g := r.e.Group("/api/v1/reports")
	g.GET("", r.listHandler)
	g.GET("/:name", r.getHandler)
	g.GET("/:name/repos/:repo", r.repoHandler)
	g.GET("/:name/alerts", r.alertsHandler)
}

// listHandler godoc
// @Summary List benchmark reports
// @Description Lists report files in the results directory, newest first
// @Tags reports
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} pagination.Page[ReportInfo]
// @Failure 400 {object} apperr.ErrorResponse
// @Router /api/v1/reports [get]
func (r *ReportRouter) listHandler(c echo.Context) error {
	var req pagination.Request
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	if err := req.Validate(); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}

	infos, err := r.reports.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.Paginate(infos, req))
}

// getHandler godoc
// @Summary Get a benchmark report
// @Tags reports
// @Produce json
// @Param name path string true "Report file name"
// @Success 200 {object} report.Report
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /api/v1/reports/{name} [get]
func (r *ReportRouter) getHandler(c echo.Context) error {
	rep, err := r.reports.Get(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rep)
}

// repoHandler godoc
// @Summary Get one repository record of a report
// @Tags reports
// @Produce json
// @Param name path string true "Report file name"
// @Param repo path string true "Repository name"
// @Success 200 {object} report.RepoRecord
// @Failure 404 {object} apperr.ErrorResponse
// @Router /api/v1/reports/{name}/repos/{repo} [get]
func (r *ReportRouter) repoHandler(c echo.Context) error {
	rep, err := r.reports.Get(c.Param("name"))
	if err != nil {
		return err
	}

	name := c.Param("repo")
	rec, ok := rep.Repo(name)
	if !ok {
		return apperr.NewNotFound("repo", name)
	}
	return c.JSON(http.StatusOK, rec)
}

// alertsHandler godoc
// @Summary List alerted repositories of a report
// @Tags reports
// @Produce json
// @Param name path string true "Report file name"
// @Success 200 {object} map[string][]RepoAlert
// @Failure 404 {object} apperr.ErrorResponse
// @Router /api/v1/reports/{name}/alerts [get]
func (r *ReportRouter) alertsHandler(c echo.Context) error {
	rep, err := r.reports.Get(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]RepoAlert{"alerts": Alerts(rep)})
}
