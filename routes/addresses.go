package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
	"chorescape-server/types"
)

type addressHandler struct {
	db *gorm.DB
}

func RegisterAddressRoutes(api *gin.RouterGroup, d *Deps) {
	h := &addressHandler{db: d.DB}

	grp := api.Group("/addresses")
	grp.Use(middleware.RequireAuth(d.Cfg.Identity.JWTSecret))
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.POST("", h.create)
	grp.PUT("/:id", h.update)
	grp.DELETE("/:id", h.delete)
	grp.POST("/:id/set-default", h.setDefault)
}

type addressRequest struct {
	Label     *string `json:"label"`
	FullName  *string `json:"fullName"`
	Phone     *string `json:"phone"`
	Street    string  `json:"street"`
	Unit      *string `json:"unit"`
	City      string  `json:"city"`
	Province  *string `json:"province"`
	Postal    *string `json:"postal"`
	Country   *string `json:"country"`
	IsDefault bool    `json:"isDefault"`
}

func (h *addressHandler) profileID(c *gin.Context) (string, bool) {
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

func (h *addressHandler) owned(c *gin.Context, profileID string) (*models.Address, bool) {
	var address models.Address
	err := h.db.Where("id = ? AND profile_id = ? AND is_active = ?", c.Param("id"), profileID, true).
		First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Address"))
		return nil, false
	}
	if err != nil {
		fail(c, types.Internal("Failed to load address", err))
		return nil, false
	}
	return &address, true
}

func (h *addressHandler) list(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	var addresses []models.Address
	err := h.db.Where("profile_id = ? AND is_active = ?", profileID, true).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		fail(c, types.Internal("Failed to load addresses", err))
		return
	}
	respond(c, http.StatusOK, "Addresses retrieved successfully", addresses)
}

func (h *addressHandler) get(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}
	address, ok := h.owned(c, profileID)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Address retrieved successfully", address)
}

func (h *addressHandler) create(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}

	var req addressRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Street) == "" || strings.TrimSpace(req.City) == "" {
		fail(c, types.Validation("Street and city are required"))
		return
	}

	address := models.Address{
		ProfileID: profileID,
		Label:     req.Label,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Street:    strings.TrimSpace(req.Street),
		Unit:      req.Unit,
		City:      strings.TrimSpace(req.City),
		IsDefault: req.IsDefault,
		IsActive:  true,
	}
	if req.Province != nil {
		address.Province = *req.Province
	}
	if req.Postal != nil {
		address.Postal = *req.Postal
	}
	if req.Country != nil {
		address.Country = *req.Country
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("profile_id = ?", profileID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		fail(c, types.Internal("Failed to create address", err))
		return
	}
	respond(c, http.StatusCreated, "Address created successfully", address)
}

func (h *addressHandler) update(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}
	address, ok := h.owned(c, profileID)
	if !ok {
		return
	}

	var req addressRequest
	if !bind(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Street) != "" {
		updates["street"] = strings.TrimSpace(req.Street)
	}
	if strings.TrimSpace(req.City) != "" {
		updates["city"] = strings.TrimSpace(req.City)
	}
	if req.Label != nil {
		updates["label"] = req.Label
	}
	if req.FullName != nil {
		updates["full_name"] = req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.Unit != nil {
		updates["unit"] = req.Unit
	}
	if req.Province != nil {
		updates["province"] = *req.Province
	}
	if req.Postal != nil {
		updates["postal"] = *req.Postal
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}

	if len(updates) > 0 {
		if err := h.db.Model(address).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update address", err))
			return
		}
	}
	respond(c, http.StatusOK, "Address updated successfully", address)
}

// delete is a soft delete; bookings keep their copied address text.
func (h *addressHandler) delete(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}
	address, ok := h.owned(c, profileID)
	if !ok {
		return
	}

	if err := h.db.Model(address).Updates(map[string]interface{}{
		"is_active":  false,
		"is_default": false,
	}).Error; err != nil {
		fail(c, types.Internal("Failed to delete address", err))
		return
	}
	respond(c, http.StatusOK, "Address deleted successfully", nil)
}

func (h *addressHandler) setDefault(c *gin.Context) {
	profileID, ok := h.profileID(c)
	if !ok {
		return
	}
	address, ok := h.owned(c, profileID)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("profile_id = ?", profileID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(address).Update("is_default", true).Error
	})
	if err != nil {
		fail(c, types.Internal("Failed to set default address", err))
		return
	}
	respond(c, http.StatusOK, "Default address updated successfully", address)
}
