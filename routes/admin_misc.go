package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
)

type adminMiscHandler struct {
	db *gorm.DB
}

// RegisterAdminMiscRoutes mounts the admin views over chores, quotes,
// and career applications.
func RegisterAdminMiscRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminMiscHandler{db: d.DB}

	chores := admin.Group("/chores")
	chores.GET("", h.listChores)
	chores.PATCH("/:id/status", h.updateChoreStatus)
	chores.DELETE("/:id", h.deleteChore)

	quotes := admin.Group("/quotes")
	quotes.GET("", h.listQuotes)
	quotes.PATCH("/:id/status", h.updateQuoteStatus)
	quotes.DELETE("/:id", h.deleteQuote)

	careers := admin.Group("/careers")
	careers.GET("", h.listCareers)
}

func (h *adminMiscHandler) listChores(c *gin.Context) {
	query := h.db.Preload("Customer")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var chores []models.Chore
	if err := query.Order("created_at DESC").Find(&chores).Error; err != nil {
		fail(c, types.Internal("Failed to load chores", err))
		return
	}
	respond(c, http.StatusOK, "Chores retrieved successfully", chores)
}

func (h *adminMiscHandler) updateChoreStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if !bind(c, &req) {
		return
	}

	var chore models.Chore
	err := h.db.First(&chore, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Chore"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load chore", err))
		return
	}

	if err := h.db.Model(&chore).Update("status", strings.ToUpper(req.Status)).Error; err != nil {
		fail(c, types.Internal("Failed to update chore", err))
		return
	}
	respond(c, http.StatusOK, "Chore status updated successfully", chore)
}

func (h *adminMiscHandler) deleteChore(c *gin.Context) {
	res := h.db.Delete(&models.Chore{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		fail(c, types.Internal("Failed to delete chore", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		fail(c, types.NotFound("Chore"))
		return
	}
	respond(c, http.StatusOK, "Chore deleted successfully", nil)
}

func (h *adminMiscHandler) listQuotes(c *gin.Context) {
	query := h.db.Model(&models.Quote{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var quotes []models.Quote
	if err := query.Order("created_at DESC").Find(&quotes).Error; err != nil {
		fail(c, types.Internal("Failed to load quotes", err))
		return
	}
	respond(c, http.StatusOK, "Quotes retrieved successfully", quotes)
}

func (h *adminMiscHandler) updateQuoteStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if !bind(c, &req) {
		return
	}

	var quote models.Quote
	err := h.db.First(&quote, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Quote"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load quote", err))
		return
	}

	if err := h.db.Model(&quote).Update("status", strings.ToUpper(req.Status)).Error; err != nil {
		fail(c, types.Internal("Failed to update quote", err))
		return
	}
	respond(c, http.StatusOK, "Quote status updated successfully", quote)
}

func (h *adminMiscHandler) deleteQuote(c *gin.Context) {
	res := h.db.Delete(&models.Quote{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		fail(c, types.Internal("Failed to delete quote", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		fail(c, types.NotFound("Quote"))
		return
	}
	respond(c, http.StatusOK, "Quote deleted successfully", nil)
}

func (h *adminMiscHandler) listCareers(c *gin.Context) {
	query := h.db.Model(&models.CareerApplication{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var applications []models.CareerApplication
	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		fail(c, types.Internal("Failed to load career applications", err))
		return
	}
	respond(c, http.StatusOK, "Career applications retrieved successfully", applications)
}
