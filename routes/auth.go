package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/services"
	"chorescape-server/types"
	"chorescape-server/utils"
)

type authHandler struct {
	db       *gorm.DB
	identity *services.IdentityService
}

// RegisterAuthRoutes mounts credential proxying and profile management.
// Passwords pass through to the identity provider and are never stored.
func RegisterAuthRoutes(api *gin.RouterGroup, d *Deps) {
	h := &authHandler{db: d.DB, identity: d.Identity}
	auth := middleware.RequireAuth(d.Cfg.Identity.JWTSecret)

	grp := api.Group("/auth")
	grp.POST("/register", h.register)
	grp.POST("/login", h.login)
	grp.GET("/me", auth, h.me)

	profile := api.Group("/profile")
	profile.Use(auth)
	profile.GET("/me", h.profile)
	profile.PUT("", h.updateProfile)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

func (h *authHandler) register(c *gin.Context) {
	var req credentialsRequest
	if !bind(c, &req) {
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(email) {
		fail(c, types.Validation("Invalid email address"))
		return
	}
	if len(req.Password) < 6 {
		fail(c, types.Validation("Password must be at least 6 characters"))
		return
	}

	session, appErr := h.identity.SignUp(email, req.Password)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	profile, appErr := services.EnsureProfile(h.db, types.AuthUser{ID: session.User.ID, Email: email})
	if appErr != nil {
		fail(c, appErr)
		return
	}
	if strings.TrimSpace(req.FullName) != "" || strings.TrimSpace(req.Phone) != "" {
		updates := map[string]interface{}{}
		if name := strings.TrimSpace(req.FullName); name != "" {
			updates["full_name"] = name
		}
		if phone := strings.TrimSpace(req.Phone); phone != "" {
			updates["phone"] = phone
		}
		if err := h.db.Model(profile).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update profile", err))
			return
		}
	}

	respond(c, http.StatusCreated, "Account created successfully", gin.H{
		"session": session,
		"profile": profile,
	})
}

func (h *authHandler) login(c *gin.Context) {
	var req credentialsRequest
	if !bind(c, &req) {
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		fail(c, types.Validation("Email and password are required"))
		return
	}

	session, appErr := h.identity.SignIn(email, req.Password)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Logged in successfully", session)
}

func (h *authHandler) me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	respond(c, http.StatusOK, "Authenticated", gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (h *authHandler) profile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", profile)
}

type profileUpdateRequest struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
}

func (h *authHandler) updateProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, appErr := services.EnsureProfile(h.db, user)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	var req profileUpdateRequest
	if !bind(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = utils.TrimPtr(req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = utils.TrimPtr(req.Phone)
	}

	if len(updates) > 0 {
		if err := h.db.Model(profile).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update profile", err))
			return
		}
	}
	respond(c, http.StatusOK, "Profile updated successfully", profile)
}
