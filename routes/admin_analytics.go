package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chorescape-server/services"
)

type adminAnalyticsHandler struct {
	svc *services.AnalyticsService
}

// RegisterAdminAnalyticsRoutes mounts the dashboard aggregates. These
// are the endpoints with the degrade-to-zero policy; only revenue
// surfaces datastore errors.
func RegisterAdminAnalyticsRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminAnalyticsHandler{svc: d.Analytics}

	admin.GET("/stats", h.stats)

	grp := admin.Group("/analytics")
	grp.GET("/overview", h.overview)
	grp.GET("/bookings", h.bookings)
	grp.GET("/revenue", h.revenue)
	grp.GET("/workers", h.workers)
	grp.GET("/services", h.services)
}

func (h *adminAnalyticsHandler) stats(c *gin.Context) {
	respond(c, http.StatusOK, "Stats retrieved successfully", h.svc.Stats())
}

func (h *adminAnalyticsHandler) overview(c *gin.Context) {
	respond(c, http.StatusOK, "Overview retrieved successfully", h.svc.Overview())
}

func (h *adminAnalyticsHandler) bookings(c *gin.Context) {
	respond(c, http.StatusOK, "Booking analytics retrieved successfully", h.svc.Bookings())
}

func (h *adminAnalyticsHandler) revenue(c *gin.Context) {
	analytics, appErr := h.svc.Revenue()
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Revenue analytics retrieved successfully", analytics)
}

func (h *adminAnalyticsHandler) workers(c *gin.Context) {
	respond(c, http.StatusOK, "Worker analytics retrieved successfully", h.svc.Workers())
}

func (h *adminAnalyticsHandler) services(c *gin.Context) {
	respond(c, http.StatusOK, "Service analytics retrieved successfully", h.svc.Services())
}
