package webapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vitalscope/vitalscope/internal/domain"
	"github.com/vitalscope/vitalscope/internal/webserver"
)

// sitePayload represents the monitored site request structure
type sitePayload struct {
	Url        string `json:"url" validate:"required,url"`
	DeviceType string `json:"device_type" validate:"required,oneof=mobile desktop"`
	Interval   int    `json:"interval" validate:"omitempty,min=60"`
	Status     string `json:"status" validate:"omitempty,oneof=enabled disabled"`
	Remark     string `json:"remark" validate:"omitempty,max=500"`
}

// siteUpdatePayload relaxes validation rules for partial updates
type siteUpdatePayload struct {
	Url        string `json:"url" validate:"omitempty,url"`
	DeviceType string `json:"device_type" validate:"omitempty,oneof=mobile desktop"`
	Interval   int    `json:"interval" validate:"omitempty,min=60"`
	Status     string `json:"status" validate:"omitempty,oneof=enabled disabled"`
	Remark     string `json:"remark" validate:"omitempty,max=500"`
}

// registerSiteRoutes registers monitored site API routes
func registerSiteRoutes() {
	webserver.ApiGET("/sites", ListSites)
	webserver.ApiGET("/sites/:id", GetSite)
	webserver.ApiPOST("/sites", CreateSite)
	webserver.ApiPUT("/sites/:id", UpdateSite)
	webserver.ApiDELETE("/sites/:id", DeleteSite)
	webserver.ApiPOST("/sites/:id/run", RunSiteNow)
}

// ListSites retrieves the monitored site list
// @Summary get the monitored site list
// @Tags Sites
// @Router /api/v1/sites [get]
func ListSites(c echo.Context) error {
	sites, err := GetAppContext(c).SiteRepo().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list sites", err.Error())
	}
	return ok(c, sites)
}

// GetSite retrieves one monitored site
// @Summary get one monitored site
// @Tags Sites
// @Param id path int true "Site ID"
// @Router /api/v1/sites/{id} [get]
func GetSite(c echo.Context) error {
	id, err := siteId(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid site ID", nil)
	}
	site, err := GetAppContext(c).SiteRepo().GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Site not found", nil)
	}
	return ok(c, site)
}

// CreateSite creates a monitored site
// @Summary create a monitored site
// @Tags Sites
// @Param payload body sitePayload true "Site"
// @Router /api/v1/sites [post]
func CreateSite(c echo.Context) error {
	var payload sitePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid site payload", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid site payload", err.Error())
	}

	site := &domain.PsSite{
		Url:        payload.Url,
		DeviceType: payload.DeviceType,
		Interval:   payload.Interval,
		Status:     payload.Status,
		Remark:     payload.Remark,
	}
	if site.Interval <= 0 {
		site.Interval = 86400
	}
	if site.Status == "" {
		site.Status = "enabled"
	}
	if err := GetAppContext(c).SiteRepo().Create(c.Request().Context(), site); err != nil {
		return fail(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create site", err.Error())
	}
	return ok(c, site)
}

// UpdateSite updates a monitored site
// @Summary update a monitored site
// @Tags Sites
// @Param id path int true "Site ID"
// @Param payload body siteUpdatePayload true "Site"
// @Router /api/v1/sites/{id} [put]
func UpdateSite(c echo.Context) error {
	id, err := siteId(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid site ID", nil)
	}
	var payload siteUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid site payload", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid site payload", err.Error())
	}

	repo := GetAppContext(c).SiteRepo()
	site, err := repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Site not found", nil)
	}
	if payload.Url != "" {
		site.Url = payload.Url
	}
	if payload.DeviceType != "" {
		site.DeviceType = payload.DeviceType
	}
	if payload.Interval > 0 {
		site.Interval = payload.Interval
	}
	if payload.Status != "" {
		site.Status = payload.Status
	}
	if payload.Remark != "" {
		site.Remark = payload.Remark
	}
	if err := repo.Update(c.Request().Context(), site); err != nil {
		return fail(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update site", err.Error())
	}
	return ok(c, site)
}

// DeleteSite removes a monitored site
// @Summary delete a monitored site
// @Tags Sites
// @Param id path int true "Site ID"
// @Router /api/v1/sites/{id} [delete]
func DeleteSite(c echo.Context) error {
	id, err := siteId(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid site ID", nil)
	}
	if err := GetAppContext(c).SiteRepo().Delete(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete site", err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// RunSiteNow ingests a monitored site immediately
// @Summary trigger an immediate ingestion for one site
// @Tags Sites
// @Param id path int true "Site ID"
// @Router /api/v1/sites/{id}/run [post]
func RunSiteNow(c echo.Context) error {
	id, err := siteId(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid site ID", nil)
	}
	app := GetAppContext(c)
	site, err := app.SiteRepo().GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Site not found", nil)
	}

	result, err := app.IngestService().IngestURL(c.Request().Context(), site.Url, site.DeviceType)
	if err != nil {
		_ = app.SiteRepo().MarkRun(c.Request().Context(), site.ID, time.Now(), "failed", "")
		return ingestError(c, err)
	}
	_ = app.SiteRepo().MarkRun(c.Request().Context(), site.ID, time.Now(), "success", "")
	return ok(c, result)
}

func siteId(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
