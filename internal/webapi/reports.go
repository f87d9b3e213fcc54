package webapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vitalscope/vitalscope/internal/reports"
	"github.com/vitalscope/vitalscope/internal/vitals"
	"github.com/vitalscope/vitalscope/internal/webserver"
)

// registerReportRoutes registers report and aggregation API routes
func registerReportRoutes() {
	webserver.ApiGET("/reports", ListReports)
	webserver.ApiGET("/reports/aggregate", AggregateReports)
	webserver.ApiGET("/reports/aggregate/export", ExportAggregate)
	webserver.ApiGET("/reports/:id/annotations", GetAnnotations)
}

// ListReports retrieves all tests with their metrics, newest first
// @Summary get the report summary list
// @Tags Reports
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reports [get]
func ListReports(c echo.Context) error {
	rows, err := GetAppContext(c).ReportService().Summary(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load reports", err.Error())
	}
	return ok(c, rows)
}

// AggregateReports produces the daily or weekly chart series for one URL
// @Summary aggregate reports for one url and device type
// @Tags Reports
// @Param url query string true "Monitored URL"
// @Param device_type query string false "mobile or desktop"
// @Param mode query string false "daily or weekly"
// @Router /api/v1/reports/aggregate [get]
func AggregateReports(c echo.Context) error {
	url, deviceType, mode, paramsOK := aggregateParams(c)
	if !paramsOK {
		return fail(c, http.StatusBadRequest, "INVALID_PARAMS", "url is required and mode must be daily or weekly", nil)
	}
	points, err := GetAppContext(c).ReportService().Aggregate(c.Request().Context(), url, deviceType, mode)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to aggregate reports", err.Error())
	}
	return ok(c, points)
}

// ExportAggregate downloads an aggregation series as CSV
// @Summary export an aggregation series as CSV
// @Tags Reports
// @Router /api/v1/reports/aggregate/export [get]
func ExportAggregate(c echo.Context) error {
	url, deviceType, mode, paramsOK := aggregateParams(c)
	if !paramsOK {
		return fail(c, http.StatusBadRequest, "INVALID_PARAMS", "url is required and mode must be daily or weekly", nil)
	}
	points, err := GetAppContext(c).ReportService().Aggregate(c.Request().Context(), url, deviceType, mode)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to aggregate reports", err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="vitals.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return reports.WriteCSV(c.Response(), points)
}

// GetAnnotations returns per-metric rendering annotations for one test
// @Summary get category and pin placement annotations for one test
// @Tags Reports
// @Param id path int true "Test ID"
// @Router /api/v1/reports/{id}/annotations [get]
func GetAnnotations(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid test ID", nil)
	}
	annotations, err := GetAppContext(c).ReportService().Annotate(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to annotate test", err.Error())
	}
	return ok(c, annotations)
}

func aggregateParams(c echo.Context) (url, deviceType string, mode vitals.Mode, ok bool) {
	url = c.QueryParam("url")
	if url == "" {
		return "", "", "", false
	}
	deviceType = c.QueryParam("device_type")
	if deviceType == "" {
		deviceType = "mobile"
	}
	switch c.QueryParam("mode") {
	case "", "daily":
		mode = vitals.ModeDaily
	case "weekly":
		mode = vitals.ModeWeekly
	default:
		return "", "", "", false
	}
	return url, deviceType, mode, true
}
