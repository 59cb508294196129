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

type careerHandler struct {
	db       *gorm.DB
	uploader *services.Uploader
}

func RegisterCareerRoutes(api *gin.RouterGroup, d *Deps) {
	h := &careerHandler{db: d.DB, uploader: d.Uploader}

	grp := api.Group("/careers")
	grp.POST("", middleware.OptionalAuth(d.Cfg.Identity.JWTSecret), h.create)
}

type careerRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	JobTitle   string  `json:"jobTitle"`
	ResumeURL  *string `json:"resumeUrl"`
	ResumeData *string `json:"resumeData"`
	Message    *string `json:"message"`
}

func (h *careerHandler) create(c *gin.Context) {
	var req careerRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		fail(c, types.Validation("Name is required"))
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if email == "" {
		fail(c, types.Validation("Email is required"))
		return
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		fail(c, types.Validation("Job title is required"))
		return
	}

	resumeURL := req.ResumeURL
	if req.ResumeData != nil && strings.TrimSpace(*req.ResumeData) != "" {
		url, appErr := h.uploader.Upload(c.Request.Context(), *req.ResumeData, "careers/resumes")
		if appErr != nil {
			fail(c, appErr)
			return
		}
		resumeURL = &url
	}

	application := models.CareerApplication{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		JobTitle:  strings.TrimSpace(req.JobTitle),
		ResumeURL: resumeURL,
		Message:   req.Message,
		Status:    "PENDING",
	}
	if user, ok := middleware.CurrentUser(c); ok {
		if profile, appErr := services.FindProfile(h.db, user); appErr == nil {
			application.ProfileID = &profile.ID
		}
	}

	if err := h.db.Create(&application).Error; err != nil {
		fail(c, types.Internal("Failed to submit application", err))
		return
	}
	respond(c, http.StatusCreated, "Application submitted successfully", gin.H{
		"id":     application.ID,
		"status": application.Status,
	})
}
