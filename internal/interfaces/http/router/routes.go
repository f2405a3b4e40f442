package router

import (
	"github.com/gin-gonic/gin"
	"github.com/travelpkg/backend/internal/interfaces/http/handler"
	"github.com/travelpkg/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers the API is built from
type Handlers struct {
	Packages     *handler.PackageHandler
	Reservations *handler.ReservationHandler
	Dashboard    *handler.DashboardHandler
	Health       *handler.HealthHandler
}

// CatalogRoutes mounts the package endpoints. Admin checks happen in the
// catalog service.
func CatalogRoutes(h *handler.PackageHandler) *DomainGroup {
	return NewDomainGroup("catalog", "/packages").
		POST("/normalize", h.Normalize).
		POST("/ingest", h.Ingest).
		POST("/resync", h.Resync).
		POST("/import", h.ImportCSV).
		POST("/sync-feed", h.SyncFeed).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

// BookingRoutes mounts the reservation endpoints
func BookingRoutes(h *handler.ReservationHandler) *DomainGroup {
	return NewDomainGroup("booking", "/reservations").
		POST("", h.Create).
		GET("/mine", middleware.RequireAuth(), h.Mine).
		GET("", h.List).
		GET("/:id", h.Get).
		PUT("/:id/status", h.UpdateStatus).
		PUT("/:id/payment", h.UpdatePayment).
		DELETE("/:id", h.Delete)
}

// ReportRoutes mounts the dashboard and notice endpoints
func ReportRoutes(h *handler.DashboardHandler) *DomainGroup {
	return NewDomainGroup("report", "").
		GET("/dashboard/stats", h.Stats).
		GET("/notices/important", h.ImportantNotices)
}

// Mount registers /health and the versioned API on engine
func Mount(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.Health.Health)

	NewRouter(engine, WithAPIVersion("v1")).
		Register(CatalogRoutes(h.Packages)).
		Register(BookingRoutes(h.Reservations)).
		Register(ReportRoutes(h.Dashboard)).
		Setup()
}
