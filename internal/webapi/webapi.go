package webapi

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitalscope/vitalscope/internal/ingest"
	"github.com/vitalscope/vitalscope/internal/reports"
)

// AppContext is what handlers need from the application.
type AppContext interface {
	DB() *gorm.DB
	IngestService() *ingest.Service
	ReportService() *reports.Service
	SiteRepo() ingest.SiteRepository
}

const appContextKey = "vitalscope_app_context"

// WithAppContext injects the application into every request context.
func WithAppContext(app AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, app)
			return next(c)
		}
	}
}

// GetAppContext retrieves the application from the request context.
func GetAppContext(c echo.Context) AppContext {
	return c.Get(appContextKey).(AppContext)
}

// GetDB retrieves the database handle from the request context.
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// RegisterRoutes registers all API routes on the global web server.
func RegisterRoutes() {
	registerReportRoutes()
	registerIngestRoutes()
	registerSiteRoutes()
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, ErrorBody{Code: code, Message: message, Detail: detail})
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(200, map[string]interface{}{"data": data})
}
