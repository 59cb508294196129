package routes

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type adminServiceHandler struct {
	db *gorm.DB
}

func RegisterAdminServiceRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminServiceHandler{db: d.DB}

	grp := admin.Group("/services")
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.POST("", h.create)
	grp.PATCH("/:id", h.update)
	grp.DELETE("/:id", h.delete)

	opts := admin.Group("/service-options")
	opts.GET("", h.listOptions)
	opts.GET("/:id", h.getOption)
	opts.POST("", h.createOption)
	opts.PATCH("/:id", h.updateOption)
	opts.DELETE("/:id", h.deleteOption)
}

type serviceUpsertRequest struct {
	Name        *string  `json:"name"`
	Slug        *string  `json:"slug"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	BasePrice   *float64 `json:"basePrice"`
	ImageURL    *string  `json:"imageUrl"`
	IsActive    *bool    `json:"isActive"`
}

func validateSlug(slug string) *types.AppError {
	if !slugPattern.MatchString(slug) {
		return types.Validation("Slug must contain only lowercase letters, numbers, and hyphens")
	}
	return nil
}

func (h *adminServiceHandler) list(c *gin.Context) {
	var catalog []models.Service
	err := h.db.Preload("Options").Order("name ASC").Find(&catalog).Error
	if err != nil {
		fail(c, types.Internal("Failed to load services", err))
		return
	}
	respond(c, http.StatusOK, "Services retrieved successfully", catalog)
}

func (h *adminServiceHandler) get(c *gin.Context) {
	var service models.Service
	err := h.db.Preload("Options").First(&service, "id = ?", c.Param("id")).Error
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

func (h *adminServiceHandler) create(c *gin.Context) {
	var req serviceUpsertRequest
	if !bind(c, &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.Slug == nil || strings.TrimSpace(*req.Slug) == "" {
		fail(c, types.Validation("Name and slug are required"))
		return
	}

	slug := strings.ToLower(strings.TrimSpace(*req.Slug))
	if appErr := validateSlug(slug); appErr != nil {
		fail(c, appErr)
		return
	}

	var count int64
	h.db.Model(&models.Service{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		fail(c, types.Conflict("Service with this slug already exists"))
		return
	}

	service := models.Service{
		Name:        strings.TrimSpace(*req.Name),
		Slug:        slug,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.Type != nil {
		serviceType := models.ServiceType(strings.ToUpper(*req.Type))
		if !serviceType.Valid() {
			fail(c, types.Validation("Invalid service type"))
			return
		}
		service.Type = serviceType
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := h.db.Create(&service).Error; err != nil {
		fail(c, types.Internal("Failed to create service", err))
		return
	}
	respond(c, http.StatusCreated, "Service created successfully", service)
}

func (h *adminServiceHandler) update(c *gin.Context) {
	var req serviceUpsertRequest
	if !bind(c, &req) {
		return
	}

	var service models.Service
	err := h.db.First(&service, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Service"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load service", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if appErr := validateSlug(slug); appErr != nil {
			fail(c, appErr)
			return
		}
		var count int64
		h.db.Model(&models.Service{}).Where("slug = ? AND id <> ?", slug, service.ID).Count(&count)
		if count > 0 {
			fail(c, types.Conflict("Service with this slug already exists"))
			return
		}
		updates["slug"] = slug
	}
	if req.Type != nil {
		serviceType := models.ServiceType(strings.ToUpper(*req.Type))
		if !serviceType.Valid() {
			fail(c, types.Validation("Invalid service type"))
			return
		}
		updates["type"] = serviceType
	}
	if req.Description != nil {
		updates["description"] = nilIfBlank(*req.Description)
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.ImageURL != nil {
		updates["image_url"] = nilIfBlank(*req.ImageURL)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&service).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update service", err))
			return
		}
	}
	respond(c, http.StatusOK, "Service updated successfully", service)
}

// delete deactivates instead of removing when bookings reference the
// service, preserving the history behind denormalized rows.
func (h *adminServiceHandler) delete(c *gin.Context) {
	var service models.Service
	err := h.db.First(&service, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Service"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load service", err))
		return
	}

	var bookingCount int64
	h.db.Model(&models.Booking{}).Where("service_id = ?", service.ID).Count(&bookingCount)
	if bookingCount > 0 {
		if err := h.db.Model(&service).Update("is_active", false).Error; err != nil {
			fail(c, types.Internal("Failed to deactivate service", err))
			return
		}
		respond(c, http.StatusOK, "Service deactivated (has booking history)", service)
		return
	}

	if err := h.db.Where("service_id = ?", service.ID).Delete(&models.ServiceOption{}).Error; err != nil {
		fail(c, types.Internal("Failed to delete service options", err))
		return
	}
	if err := h.db.Delete(&service).Error; err != nil {
		fail(c, types.Internal("Failed to delete service", err))
		return
	}
	respond(c, http.StatusOK, "Service deleted successfully", nil)
}

type optionUpsertRequest struct {
	ServiceID     *string  `json:"serviceId"`
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	PriceModifier *float64 `json:"priceModifier"`
	IsActive      *bool    `json:"isActive"`
}

func (h *adminServiceHandler) listOptions(c *gin.Context) {
	query := h.db.Preload("Service")
	if serviceID := c.Query("serviceId"); serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}

	var options []models.ServiceOption
	if err := query.Order("name ASC").Find(&options).Error; err != nil {
		fail(c, types.Internal("Failed to load service options", err))
		return
	}
	respond(c, http.StatusOK, "Service options retrieved successfully", options)
}

func (h *adminServiceHandler) getOption(c *gin.Context) {
	var option models.ServiceOption
	err := h.db.Preload("Service").First(&option, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Service option"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load service option", err))
		return
	}
	respond(c, http.StatusOK, "Service option retrieved successfully", option)
}

func (h *adminServiceHandler) createOption(c *gin.Context) {
	var req optionUpsertRequest
	if !bind(c, &req) {
		return
	}
	if req.ServiceID == nil || *req.ServiceID == "" || req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fail(c, types.Validation("Service ID and name are required"))
		return
	}
	if req.Price != nil && req.PriceModifier != nil {
		fail(c, types.Validation("Cannot set both price and priceModifier. Use one or the other."))
		return
	}

	var count int64
	h.db.Model(&models.Service{}).Where("id = ?", *req.ServiceID).Count(&count)
	if count == 0 {
		fail(c, types.NotFound("Service"))
		return
	}

	option := models.ServiceOption{
		ServiceID:     *req.ServiceID,
		Name:          strings.TrimSpace(*req.Name),
		Description:   req.Description,
		Price:         req.Price,
		PriceModifier: req.PriceModifier,
		IsActive:      true,
	}
	if req.IsActive != nil {
		option.IsActive = *req.IsActive
	}

	if err := h.db.Create(&option).Error; err != nil {
		fail(c, types.Internal("Failed to create service option", err))
		return
	}
	respond(c, http.StatusCreated, "Service option created successfully", option)
}

func (h *adminServiceHandler) updateOption(c *gin.Context) {
	var req optionUpsertRequest
	if !bind(c, &req) {
		return
	}
	if req.Price != nil && req.PriceModifier != nil {
		fail(c, types.Validation("Cannot set both price and priceModifier. Use one or the other."))
		return
	}

	var option models.ServiceOption
	err := h.db.First(&option, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Service option"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load service option", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = nilIfBlank(*req.Description)
	}
	// Setting one pricing field clears the other; they are exclusive.
	if req.Price != nil {
		updates["price"] = *req.Price
		updates["price_modifier"] = nil
	}
	if req.PriceModifier != nil {
		updates["price_modifier"] = *req.PriceModifier
		updates["price"] = nil
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&option).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update service option", err))
			return
		}
	}
	respond(c, http.StatusOK, "Service option updated successfully", option)
}

func (h *adminServiceHandler) deleteOption(c *gin.Context) {
	res := h.db.Delete(&models.ServiceOption{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		fail(c, types.Internal("Failed to delete service option", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		fail(c, types.NotFound("Service option"))
		return
	}
	respond(c, http.StatusOK, "Service option deleted successfully", nil)
}

func nilIfBlank(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.TrimSpace(value)
}
