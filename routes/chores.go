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
	"chorescape-server/utils"
)

type choreHandler struct {
	db *gorm.DB
}

// RegisterChoreRoutes mounts the one-off task endpoints. Creation
// accepts both authenticated and guest callers.
func RegisterChoreRoutes(api *gin.RouterGroup, d *Deps) {
	h := &choreHandler{db: d.DB}
	secret := d.Cfg.Identity.JWTSecret

	grp := api.Group("/chores")
	grp.POST("", middleware.OptionalAuth(secret), h.create)

	grp.Use(middleware.RequireAuth(secret))
	grp.GET("", h.listMine)
	grp.GET("/:id", h.get)
	grp.PUT("/:id", h.update)
	grp.DELETE("/:id", h.delete)
}

type choreRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description *string  `json:"description"`
	Budget      *float64 `json:"budget"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Province    *string  `json:"province"`
	Postal      *string  `json:"postal"`
	GuestEmail  string   `json:"guestEmail"`
	GuestName   string   `json:"guestName"`
	GuestPhone  string   `json:"guestPhone"`
}

func (h *choreHandler) create(c *gin.Context) {
	var req choreRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		fail(c, types.Validation("Title is required"))
		return
	}

	chore := models.Chore{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Budget:      req.Budget,
		Address:     req.Address,
		City:        req.City,
		Province:    req.Province,
		Postal:      req.Postal,
		Status:      "PENDING",
	}
	if strings.TrimSpace(req.Category) != "" {
		chore.Category = strings.TrimSpace(req.Category)
	} else {
		chore.Category = "Other"
	}

	if user, ok := middleware.CurrentUser(c); ok {
		profile, appErr := services.EnsureProfile(h.db, user)
		if appErr != nil {
			fail(c, appErr)
			return
		}
		chore.CustomerID = &profile.ID
	} else {
		guestEmail := utils.NormalizeEmail(req.GuestEmail)
		if guestEmail == "" {
			fail(c, types.Validation("Guest email is required"))
			return
		}
		chore.GuestEmail = &guestEmail
		chore.GuestName = utils.TrimPtr(&req.GuestName)
		chore.GuestPhone = utils.TrimPtr(&req.GuestPhone)
	}

	if err := h.db.Create(&chore).Error; err != nil {
		fail(c, types.Internal("Failed to create chore", err))
		return
	}
	respond(c, http.StatusCreated, "Chore created successfully", chore)
}

func (h *choreHandler) owned(c *gin.Context) (*models.Chore, bool) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return nil, false
	}

	var chore models.Chore
	err := h.db.Where("id = ? AND customer_id = ?", c.Param("id"), profile.ID).First(&chore).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Chore"))
		return nil, false
	}
	if err != nil {
		fail(c, types.Internal("Failed to load chore", err))
		return nil, false
	}
	return &chore, true
}

func (h *choreHandler) listMine(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	var chores []models.Chore
	err := h.db.Where("customer_id = ?", profile.ID).
		Order("created_at DESC").
		Find(&chores).Error
	if err != nil {
		fail(c, types.Internal("Failed to load chores", err))
		return
	}
	respond(c, http.StatusOK, "Chores retrieved successfully", chores)
}

func (h *choreHandler) get(c *gin.Context) {
	chore, ok := h.owned(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Chore retrieved successfully", chore)
}

func (h *choreHandler) update(c *gin.Context) {
	chore, ok := h.owned(c)
	if !ok {
		return
	}

	var req choreRequest
	if !bind(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Title) != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if strings.TrimSpace(req.Category) != "" {
		updates["category"] = strings.TrimSpace(req.Category)
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.Budget != nil {
		updates["budget"] = req.Budget
	}
	if req.Address != nil {
		updates["address"] = req.Address
	}
	if req.City != nil {
		updates["city"] = req.City
	}
	if req.Province != nil {
		updates["province"] = req.Province
	}
	if req.Postal != nil {
		updates["postal"] = req.Postal
	}

	if len(updates) > 0 {
		if err := h.db.Model(chore).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update chore", err))
			return
		}
	}
	respond(c, http.StatusOK, "Chore updated successfully", chore)
}

func (h *choreHandler) delete(c *gin.Context) {
	chore, ok := h.owned(c)
	if !ok {
		return
	}

	if err := h.db.Delete(chore).Error; err != nil {
		fail(c, types.Internal("Failed to delete chore", err))
		return
	}
	respond(c, http.StatusOK, "Chore deleted successfully", nil)
}
