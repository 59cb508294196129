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
	"chorescape-server/services"
	"chorescape-server/types"
	"chorescape-server/utils"
)

type workerApplicationHandler struct {
	db       *gorm.DB
	identity *services.IdentityService
}

// RegisterWorkerApplicationRoutes mounts the public application flow:
// a plain application, the apply-with-account variant that provisions
// credentials up front, and the status lookup.
func RegisterWorkerApplicationRoutes(api *gin.RouterGroup, d *Deps) {
	h := &workerApplicationHandler{db: d.DB, identity: d.Identity}
	optional := middleware.OptionalAuth(d.Cfg.Identity.JWTSecret)

	apply := api.Group("/worker/apply")
	apply.POST("", optional, h.applyWithAccount)

	grp := api.Group("/worker-applications")
	grp.POST("", optional, h.create)
	grp.GET("", h.status)
	grp.GET("/:id", h.status)
}

type workerApplicationRequest struct {
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	City            *string `json:"city"`
	Province        *string `json:"province"`
	WorkEligible    bool    `json:"workEligible"`
	Availability    *string `json:"availability"`
	Experience      *string `json:"experience"`
	TermsAccepted   bool    `json:"termsAccepted"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
}

func (h *workerApplicationHandler) hasPending(email string) (bool, *types.AppError) {
	var count int64
	err := h.db.Model(&models.WorkerApplication{}).
		Where("email = ? AND status = ?", email, models.ApplicationStatusPending).
		Count(&count).Error
	if err != nil {
		return false, types.Internal("Failed to check applications", err)
	}
	return count > 0, nil
}

func (h *workerApplicationHandler) create(c *gin.Context) {
	var req workerApplicationRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.Email) == "" {
		fail(c, types.Validation("Full name and email are required"))
		return
	}
	if !req.TermsAccepted {
		fail(c, types.Validation("You must accept the terms and conditions"))
		return
	}

	email := utils.NormalizeEmail(req.Email)
	pending, appErr := h.hasPending(email)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	if pending {
		fail(c, types.Conflict("You already have a pending application. Please wait for review."))
		return
	}

	now := time.Now()
	application := models.WorkerApplication{
		FullName:        strings.TrimSpace(req.FullName),
		Email:           email,
		Phone:           req.Phone,
		City:            req.City,
		Province:        req.Province,
		WorkEligible:    req.WorkEligible,
		Availability:    req.Availability,
		Experience:      req.Experience,
		TermsAccepted:   true,
		TermsAcceptedAt: &now,
		Status:          models.ApplicationStatusPending,
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
	respond(c, http.StatusCreated,
		"Application submitted successfully! We will review your application and get back to you soon.",
		gin.H{"id": application.ID, "email": application.Email, "status": application.Status})
}

// applyWithAccount provisions identity credentials, a CUSTOMER profile,
// and the application in one step. The role flips to WORKER only when an
// admin approves.
func (h *workerApplicationHandler) applyWithAccount(c *gin.Context) {
	var req workerApplicationRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" || req.Password == "" {
		fail(c, types.Validation("Email, full name, and password are required"))
		return
	}
	if req.Password != req.ConfirmPassword {
		fail(c, types.Validation("Passwords do not match"))
		return
	}
	if len(req.Password) < 6 {
		fail(c, types.Validation("Password must be at least 6 characters"))
		return
	}

	email := utils.NormalizeEmail(req.Email)
	pending, appErr := h.hasPending(email)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	if pending {
		fail(c, types.Conflict("You already have a pending application. Please wait for review."))
		return
	}

	identityUser, appErr := h.identity.AdminCreateUser(email, req.Password)
	if appErr != nil {
		if appErr.Kind == types.KindConflict {
			fail(c, types.Conflict("This email is already registered. Please log in."))
			return
		}
		fail(c, appErr)
		return
	}

	// The profile needs the identity user id, so credentials are created
	// first. If the inserts below fail the provider account survives
	// without a profile; a retry then hits the already-registered path
	// and the applicant logs in instead.
	fullName := strings.TrimSpace(req.FullName)
	profile := models.Profile{
		UserID:   identityUser.ID,
		Email:    email,
		FullName: &fullName,
		Phone:    req.Phone,
		Role:     models.RoleCustomer,
	}
	if err := h.db.Create(&profile).Error; err != nil {
		fail(c, types.Internal("Failed to create profile", err))
		return
	}

	application := models.WorkerApplication{
		ProfileID:     &profile.ID,
		FullName:      fullName,
		Email:         email,
		Phone:         req.Phone,
		TermsAccepted: true,
		Status:        models.ApplicationStatusPending,
	}
	if err := h.db.Create(&application).Error; err != nil {
		fail(c, types.Internal("Failed to submit application", err))
		return
	}

	respond(c, http.StatusCreated,
		"Application submitted successfully! You can log in and track your application status.",
		gin.H{"id": application.ID, "email": application.Email, "status": application.Status})
}

// status looks an application up by id (path) or email (query).
func (h *workerApplicationHandler) status(c *gin.Context) {
	id := c.Param("id")
	email := utils.NormalizeEmail(c.Query("email"))
	if id == "" && email == "" {
		fail(c, types.Validation("Application ID or email is required"))
		return
	}

	query := h.db.Model(&models.WorkerApplication{})
	if id != "" {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("email = ?", email)
	}

	var application models.WorkerApplication
	err := query.Order("created_at DESC").First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Application"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load application", err))
		return
	}

	respond(c, http.StatusOK, "Application retrieved successfully", gin.H{
		"id":        application.ID,
		"email":     application.Email,
		"status":    application.Status,
		"createdAt": application.CreatedAt,
		"updatedAt": application.UpdatedAt,
	})
}
