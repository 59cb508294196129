package routes

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/types"
	"chorescape-server/utils"
)

type contactHandler struct {
	db *gorm.DB
}

// RegisterContactRoutes mounts the public contact form and the admin
// inbox.
func RegisterContactRoutes(api *gin.RouterGroup, d *Deps) {
	h := &contactHandler{db: d.DB}

	grp := api.Group("/contact")
	grp.POST("", h.create)

	adminOnly := []gin.HandlerFunc{
		middleware.RequireAuth(d.Cfg.Identity.JWTSecret),
		middleware.RequireRole(d.DB, models.RoleAdmin),
	}
	grp.GET("", append(adminOnly, h.list)...)
	grp.GET("/:id", append(adminOnly, h.get)...)
	grp.PUT("/:id/status", append(adminOnly, h.updateStatus)...)
	grp.DELETE("/:id", append(adminOnly, h.delete)...)
}

type contactRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Subject    string  `json:"subject"`
	Message    string  `json:"message"`
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

func (h *contactHandler) create(c *gin.Context) {
	var req contactRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
		fail(c, types.Validation("All fields are required: name, email, subject, message"))
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		fail(c, types.Validation("Invalid email address"))
		return
	}

	message := models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   email,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  models.ContactStatusNew,
	}
	if err := h.db.Create(&message).Error; err != nil {
		fail(c, types.Internal("Failed to save message", err))
		return
	}
	respond(c, http.StatusCreated, "Your message has been sent successfully. We'll get back to you soon!", gin.H{"id": message.ID})
}

func (h *contactHandler) list(c *gin.Context) {
	query := h.db.Model(&models.ContactMessage{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var messages []models.ContactMessage
	if err := query.Order("created_at DESC").Find(&messages).Error; err != nil {
		fail(c, types.Internal("Failed to load messages", err))
		return
	}
	respond(c, http.StatusOK, "Messages retrieved successfully", messages)
}

func (h *contactHandler) get(c *gin.Context) {
	var message models.ContactMessage
	err := h.db.First(&message, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Contact message"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load message", err))
		return
	}

	// First open marks the message as read.
	if message.Status == models.ContactStatusNew {
		if err := h.db.Model(&message).Update("status", models.ContactStatusRead).Error; err == nil {
			message.Status = models.ContactStatusRead
		}
	}
	respond(c, http.StatusOK, "Message retrieved successfully", message)
}

func (h *contactHandler) updateStatus(c *gin.Context) {
	var req contactRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		fail(c, types.Validation("Status is required"))
		return
	}

	status := models.ContactStatus(strings.ToUpper(req.Status))
	switch status {
	case models.ContactStatusNew, models.ContactStatusRead, models.ContactStatusReplied:
	default:
		fail(c, types.Validation("Status must be one of: NEW, READ, REPLIED"))
		return
	}

	var message models.ContactMessage
	err := h.db.First(&message, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Contact message"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load message", err))
		return
	}

	updates := map[string]interface{}{"status": status}
	if req.AdminNotes != nil {
		updates["admin_notes"] = req.AdminNotes
	}
	if status == models.ContactStatusReplied {
		now := time.Now()
		updates["replied_at"] = &now
		if profile, ok := middleware.CurrentProfile(c); ok {
			updates["replied_by"] = &profile.ID
		}
	}

	if err := h.db.Model(&message).Updates(updates).Error; err != nil {
		fail(c, types.Internal("Failed to update message", err))
		return
	}
	respond(c, http.StatusOK, "Message status updated successfully", message)
}

func (h *contactHandler) delete(c *gin.Context) {
	res := h.db.Delete(&models.ContactMessage{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		fail(c, types.Internal("Failed to delete message", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		fail(c, types.NotFound("Contact message"))
		return
	}
	respond(c, http.StatusOK, "Contact message deleted successfully", nil)
}
