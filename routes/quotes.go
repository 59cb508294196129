package routes

import (
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

type quoteHandler struct {
	db *gorm.DB
}

func RegisterQuoteRoutes(api *gin.RouterGroup, d *Deps) {
	h := &quoteHandler{db: d.DB}
	secret := d.Cfg.Identity.JWTSecret

	grp := api.Group("/quotes")
	grp.POST("", middleware.OptionalAuth(secret), h.create)
	grp.GET("/mine", middleware.RequireAuth(secret), h.listMine)
}

type quoteRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	ServiceType string  `json:"serviceType"`
	Details     *string `json:"details"`
	CompanyName *string `json:"companyName"`
}

func (h *quoteHandler) create(c *gin.Context) {
	var req quoteRequest
	if !bind(c, &req) {
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if user, ok := middleware.CurrentUser(c); ok && email == "" {
		email = utils.NormalizeEmail(user.Email)
	}
	if strings.TrimSpace(req.Name) == "" || email == "" || strings.TrimSpace(req.ServiceType) == "" {
		fail(c, types.Validation("Name, email, and service type are required"))
		return
	}
	if !utils.IsValidEmail(email) {
		fail(c, types.Validation("Invalid email address"))
		return
	}

	quote := models.Quote{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       req.Phone,
		ServiceType: strings.TrimSpace(req.ServiceType),
		Details:     req.Details,
		CompanyName: req.CompanyName,
		Status:      "PENDING",
	}
	if err := h.db.Create(&quote).Error; err != nil {
		fail(c, types.Internal("Failed to create quote", err))
		return
	}
	respond(c, http.StatusCreated, "Quote request submitted successfully", quote)
}

func (h *quoteHandler) listMine(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	var quotes []models.Quote
	err := h.db.Where("email = ?", profile.Email).
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		fail(c, types.Internal("Failed to load quotes", err))
		return
	}
	respond(c, http.StatusOK, "Quotes retrieved successfully", quotes)
}
