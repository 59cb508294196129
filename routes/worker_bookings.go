package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
)

type workerBookingHandler struct {
	svc *services.BookingService
}

// RegisterWorkerRoutes mounts the worker job board. Every endpoint
// requires the WORKER role, resolved from the live profile.
func RegisterWorkerRoutes(api *gin.RouterGroup, d *Deps) {
	h := &workerBookingHandler{svc: d.Bookings}

	grp := api.Group("/worker")
	grp.Use(middleware.RequireAuth(d.Cfg.Identity.JWTSecret))
	grp.Use(middleware.RequireRole(d.DB, models.RoleWorker))

	grp.GET("/bookings", h.list)
	grp.PATCH("/bookings/:id/accept", h.action("accept"))
	grp.PATCH("/bookings/:id/reject", h.action("reject"))
	grp.PATCH("/bookings/:id/start", h.action("start"))
	grp.PATCH("/bookings/:id/complete", h.action("complete"))

	RegisterWorkerDocumentRoutes(grp, d)
}

func (h *workerBookingHandler) list(c *gin.Context) {
	profile, _ := middleware.CurrentProfile(c)

	list, appErr := h.svc.ListForWorker(profile.ID, c.Query("status"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Bookings retrieved successfully", list)
}

func actionMessage(name string) string {
	switch name {
	case "accept":
		return "Booking accepted successfully"
	case "reject":
		return "Booking rejected successfully"
	case "start":
		return "Booking started successfully"
	case "complete":
		return "Booking completed successfully"
	}
	return "Booking updated successfully"
}

func (h *workerBookingHandler) action(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, _ := middleware.CurrentProfile(c)

		booking, appErr := h.svc.WorkerTransition(profile.ID, c.Param("id"), name)
		if appErr != nil {
			fail(c, appErr)
			return
		}
		respond(c, http.StatusOK, actionMessage(name), booking)
	}
}
