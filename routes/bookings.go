package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
)

type bookingHandler struct {
	db  *gorm.DB
	svc *services.BookingService
}

// RegisterBookingRoutes mounts the customer-facing booking endpoints.
// Guest creation is the only unauthenticated one.
func RegisterBookingRoutes(api *gin.RouterGroup, d *Deps) {
	h := &bookingHandler{db: d.DB, svc: d.Bookings}

	grp := api.Group("/bookings")
	grp.POST("/guest", h.createGuest)

	grp.Use(middleware.RequireAuth(d.Cfg.Identity.JWTSecret))
	grp.GET("/mine", h.listMine)
	grp.GET("/:id", h.get)
	grp.POST("", h.create)
	grp.DELETE("/:id", h.cancel)
	grp.POST("/:id/rebook", h.rebook)
	grp.POST("/:id/reschedule", h.reschedule)
	grp.POST("/:id/favorite", h.toggleFavorite)
}

func (h *bookingHandler) profileID(c *gin.Context) (string, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "data": nil})
		return "", false
	}
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return "", false
	}
	return profile.ID, true
}

func (h *bookingHandler) create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.BookingCreateRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.Create(user, &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusCreated, "Booking created successfully", booking)
}

func (h *bookingHandler) createGuest(c *gin.Context) {
	var req models.GuestBookingCreateRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.CreateGuest(&req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusCreated, "Booking created successfully", booking)
}

func (h *bookingHandler) listMine(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	bookings, appErr := h.svc.ListMine(profileID)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *bookingHandler) get(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	booking, appErr := h.svc.GetForCustomer(profileID, c.Param("id"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking retrieved successfully", booking)
}

func (h *bookingHandler) cancel(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	booking, appErr := h.svc.Cancel(profileID, c.Param("id"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking cancelled successfully", booking)
}

func (h *bookingHandler) rebook(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	var req models.RebookRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.Rebook(profileID, c.Param("id"), &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusCreated, "Booking rebooked successfully", booking)
}

func (h *bookingHandler) reschedule(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	var req models.RescheduleRequest
	if !bind(c, &req) {
		return
	}

	booking, appErr := h.svc.Reschedule(profileID, c.Param("id"), &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking rescheduled successfully", booking)
}

func (h *bookingHandler) toggleFavorite(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	booking, appErr := h.svc.ToggleFavorite(profileID, c.Param("id"))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Booking updated successfully", booking)
}
