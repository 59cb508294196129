package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chorescape-server/models"
	"chorescape-server/services"
)

type adminBookingHandler struct {
	svc *services.BookingService
}

func RegisterAdminBookingRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminBookingHandler{svc: d.Bookings}

	grp := admin.Group("/bookings")
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.PATCH("/:id/status", h.updateStatus)
	grp.PATCH("/:id/assign", h.assign)
	grp.PATCH("/:id/unassign", h.unassign)
	grp.PUT("/:id", h.update)
}

func (h *adminBookingHandler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	bookings, pagination, appErr := h.svc.AdminList(page, pageSize, c.Query("status"), c.Query("search"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Bookings retrieved successfully",
		"data":       bookings,
		"pagination": pagination,
	})
}

func (h *adminBookingHandler) get(c *gin.Context) {
	booking, appErr := h.svc.AdminGet(c.Param("id"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking retrieved successfully", booking)
}

func (h *adminBookingHandler) updateStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.AdminUpdateStatus(c.Param("id"), req.Status)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking status updated successfully", booking)
}

func (h *adminBookingHandler) assign(c *gin.Context) {
	var req models.AssignWorkerRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.AssignWorker(c.Param("id"), req.WorkerID)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Worker assigned successfully", booking)
}

func (h *adminBookingHandler) unassign(c *gin.Context) {
	booking, appErr := h.svc.UnassignWorker(c.Param("id"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Worker unassigned successfully", booking)
}

func (h *adminBookingHandler) update(c *gin.Context) {
	var req models.AdminBookingUpdateRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.AdminUpdate(c.Param("id"), &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking updated successfully", booking)
}
