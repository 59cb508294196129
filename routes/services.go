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

type catalogHandler struct {
	db *gorm.DB
}

// RegisterPublicServiceRoutes mounts the read-only public catalog.
func RegisterPublicServiceRoutes(api *gin.RouterGroup, d *Deps) {
	h := &catalogHandler{db: d.DB}

	grp := api.Group("/public/services")
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
}

func (h *catalogHandler) list(c *gin.Context) {
	query := h.db.Where("is_active = ?", true)
	if raw := c.Query("type"); raw != "" {
		serviceType := models.ServiceType(strings.ToUpper(raw))
		if !serviceType.Valid() {
			fail(c, types.Validation("Invalid service type: %s", raw))
			return
		}
		query = query.Where("type = ?", serviceType)
	}

	var catalog []models.Service
	err := query.
		Preload("Options", "is_active = ?", true).
		Order("name ASC").
		Find(&catalog).Error
	if err != nil {
		fail(c, types.Internal("Failed to load services", err))
		return
	}
	respond(c, http.StatusOK, "Services retrieved successfully", catalog)
}

// get accepts either an id or a slug.
func (h *catalogHandler) get(c *gin.Context) {
	var service models.Service
	err := h.db.Where("(id = ? OR slug = ?) AND is_active = ?", c.Param("id"), c.Param("id"), true).
		Preload("Options", "is_active = ?", true).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Service"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load service", err))
		return
	}
	respond(c, http.StatusOK, "Service retrieved successfully", service)
}
