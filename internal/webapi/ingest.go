package webapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitalscope/vitalscope/internal/vitals"
	"github.com/vitalscope/vitalscope/internal/webserver"
)

// ingestPayload requests one ingestion. Either a raw snapshot is supplied
// verbatim, or only a URL and the snapshot is fetched from the upstream API.
type ingestPayload struct {
	Url        string           `json:"url" validate:"omitempty,url"`
	DeviceType string           `json:"device_type" validate:"omitempty,oneof=mobile desktop"`
	Snapshot   *vitals.Snapshot `json:"snapshot"`
}

// registerIngestRoutes registers ingestion API routes
func registerIngestRoutes() {
	webserver.ApiPOST("/ingest", IngestSnapshot)
}

// IngestSnapshot ingests one performance snapshot
// @Summary ingest one snapshot, fetching it upstream when not supplied
// @Tags Ingest
// @Param payload body ingestPayload true "Ingestion request"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/ingest [post]
func IngestSnapshot(c echo.Context) error {
	var payload ingestPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid ingestion payload", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid ingestion payload", err.Error())
	}
	if payload.Snapshot == nil && payload.Url == "" {
		return fail(c, http.StatusBadRequest, "MISSING_SOURCE", "Either snapshot or url is required", nil)
	}

	deviceType := payload.DeviceType
	if deviceType == "" {
		deviceType = "mobile"
	}

	svc := GetAppContext(c).IngestService()
	ctx := c.Request().Context()

	var (
		result interface{}
		err    error
	)
	if payload.Snapshot != nil {
		result, err = svc.IngestSnapshot(ctx, payload.Snapshot, deviceType, 0)
	} else {
		result, err = svc.IngestURL(ctx, payload.Url, deviceType)
	}
	if err != nil {
		return ingestError(c, err)
	}
	return ok(c, result)
}

// ingestError maps the core error taxonomy onto HTTP statuses.
func ingestError(c echo.Context, err error) error {
	var malformed *vitals.MalformedSnapshotError
	if errors.As(err, &malformed) {
		return fail(c, http.StatusBadRequest, "MALFORMED_SNAPSHOT", malformed.Error(), nil)
	}
	var upstream *vitals.UpstreamError
	if errors.As(err, &upstream) {
		return fail(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", upstream.Error(), upstream.Status)
	}
	var persistence *vitals.PersistenceError
	if errors.As(err, &persistence) {
		return fail(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", persistence.Error(), persistence.Stage)
	}
	return fail(c, http.StatusInternalServerError, "INGEST_FAILED", "Failed to ingest snapshot", err.Error())
}
