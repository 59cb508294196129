package routes

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
	"chorescape-server/types"
	"chorescape-server/utils"
)

type adminWorkerHandler struct {
	db       *gorm.DB
	identity *services.IdentityService
}

func RegisterAdminWorkerRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminWorkerHandler{db: d.DB, identity: d.Identity}

	grp := admin.Group("/workers")
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.POST("", h.create)
	grp.PATCH("/:id/status", h.updateStatus)

	apps := admin.Group("/worker-applications")
	apps.GET("", h.listApplications)
	apps.POST("/:id/approve", h.approveApplication)
	apps.POST("/:id/reject", h.rejectApplication)
	apps.POST("/:id/request-docs", h.requestDocuments)
}

func (h *adminWorkerHandler) list(c *gin.Context) {
	var workers []models.Profile
	err := h.db.Where("role = ?", models.RoleWorker).
		Order("created_at DESC").
		Find(&workers).Error
	if err != nil {
		fail(c, types.Internal("Failed to load workers", err))
		return
	}
	respond(c, http.StatusOK, "Workers retrieved successfully", workers)
}

func (h *adminWorkerHandler) worker(c *gin.Context) (*models.Profile, bool) {
	var worker models.Profile
	err := h.db.First(&worker, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && worker.Role != models.RoleWorker) {
		fail(c, types.NotFound("Worker"))
		return nil, false
	}
	if err != nil {
		fail(c, types.Internal("Failed to load worker", err))
		return nil, false
	}
	return &worker, true
}

func (h *adminWorkerHandler) get(c *gin.Context) {
	worker, ok := h.worker(c)
	if !ok {
		return
	}

	var documents []models.WorkerDocument
	h.db.Where("worker_profile_id = ?", worker.ID).Order("created_at DESC").Find(&documents)

	var activeJobs int64
	h.db.Model(&models.Booking{}).
		Where("assigned_worker_id = ? AND status IN ?", worker.ID, []models.BookingStatus{
			models.BookingStatusAssigned,
			models.BookingStatusAccepted,
			models.BookingStatusInProgress,
		}).
		Count(&activeJobs)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Worker retrieved successfully",
		"data":       worker,
		"documents":  documents,
		"activeJobs": activeJobs,
	})
}

type createWorkerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
}

// create provisions identity credentials with the service key and a
// WORKER profile in one step.
func (h *adminWorkerHandler) create(c *gin.Context) {
	var req createWorkerRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		fail(c, types.Validation("Email and password are required"))
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

	var count int64
	h.db.Model(&models.Profile{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		fail(c, types.Conflict("User with this email already exists"))
		return
	}

	identityUser, appErr := h.identity.AdminCreateUser(email, req.Password)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	worker := models.Profile{
		UserID:   identityUser.ID,
		Email:    email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     models.RoleWorker,
	}
	if err := h.db.Create(&worker).Error; err != nil {
		fail(c, types.Internal("Failed to create worker profile", err))
		return
	}
	respond(c, http.StatusCreated, "Worker account created successfully", worker)
}

type workerStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *adminWorkerHandler) updateStatus(c *gin.Context) {
	var req workerStatusRequest
	if !bind(c, &req) {
		return
	}
	if req.IsActive == nil {
		fail(c, types.Validation("isActive is required"))
		return
	}

	worker, ok := h.worker(c)
	if !ok {
		return
	}

	if err := h.db.Model(worker).Update("is_active", *req.IsActive).Error; err != nil {
		fail(c, types.Internal("Failed to update worker", err))
		return
	}

	message := "Worker deactivated successfully"
	if *req.IsActive {
		message = "Worker activated successfully"
	}
	respond(c, http.StatusOK, message, worker)
}

func (h *adminWorkerHandler) listApplications(c *gin.Context) {
	query := h.db.Model(&models.WorkerApplication{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var applications []models.WorkerApplication
	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		fail(c, types.Internal("Failed to load applications", err))
		return
	}
	respond(c, http.StatusOK, "Applications retrieved successfully", applications)
}

func (h *adminWorkerHandler) application(c *gin.Context) (*models.WorkerApplication, bool) {
	var application models.WorkerApplication
	err := h.db.First(&application, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Application"))
		return nil, false
	}
	if err != nil {
		fail(c, types.Internal("Failed to load application", err))
		return nil, false
	}
	return &application, true
}

func (h *adminWorkerHandler) pendingApplication(c *gin.Context) (*models.WorkerApplication, bool) {
	application, ok := h.application(c)
	if !ok {
		return nil, false
	}
	if application.Status != models.ApplicationStatusPending {
		fail(c, types.Validation("Application is already %s", application.Status))
		return nil, false
	}
	return application, true
}

func (h *adminWorkerHandler) markReviewed(c *gin.Context, application *models.WorkerApplication, target models.ApplicationStatus) bool {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      target,
		"reviewed_at": &now,
	}
	if profile, ok := middleware.CurrentProfile(c); ok {
		updates["reviewed_by"] = &profile.ID
	}

	if err := h.db.Model(application).Updates(updates).Error; err != nil {
		fail(c, types.Internal("Failed to update application", err))
		return false
	}
	return true
}

// approveApplication flips the applicant's profile to the WORKER role,
// provisioning identity credentials and a profile first when the
// application arrived without an account. The status only moves to
// APPROVED once the account side effects have succeeded.
func (h *adminWorkerHandler) approveApplication(c *gin.Context) {
	application, ok := h.pendingApplication(c)
	if !ok {
		return
	}

	profileID := application.ProfileID
	if profileID == nil {
		// Guest applications may still belong to a known account.
		var existing models.Profile
		err := h.db.First(&existing, "email = ?", application.Email).Error
		switch {
		case err == nil:
			profileID = &existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			identityUser, appErr := h.identity.AdminCreateUser(application.Email, uuid.NewString())
			if appErr != nil {
				fail(c, appErr)
				return
			}
			profile := models.Profile{
				UserID:   identityUser.ID,
				Email:    application.Email,
				FullName: &application.FullName,
				Phone:    application.Phone,
				Role:     models.RoleWorker,
			}
			if err := h.db.Create(&profile).Error; err != nil {
				fail(c, types.Internal("Failed to create worker profile", err))
				return
			}
			profileID = &profile.ID
		default:
			fail(c, types.Internal("Failed to load profile", err))
			return
		}
		if err := h.db.Model(application).Update("profile_id", profileID).Error; err != nil {
			fail(c, types.Internal("Failed to link application", err))
			return
		}
	}

	if err := h.db.Model(&models.Profile{}).
		Where("id = ?", *profileID).
		Update("role", models.RoleWorker).Error; err != nil {
		fail(c, types.Internal("Failed to update profile role", err))
		return
	}
	if !h.markReviewed(c, application, models.ApplicationStatusApproved) {
		return
	}
	respond(c, http.StatusOK, "Application approved. User role updated to WORKER.", application)
}

func (h *adminWorkerHandler) rejectApplication(c *gin.Context) {
	application, ok := h.pendingApplication(c)
	if !ok {
		return
	}
	if !h.markReviewed(c, application, models.ApplicationStatusRejected) {
		return
	}
	respond(c, http.StatusOK, "Application rejected", application)
}

// requestDocuments leaves the application PENDING; it only signals the
// applicant.
func (h *adminWorkerHandler) requestDocuments(c *gin.Context) {
	application, ok := h.application(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Documents required. Application status remains PENDING.", application)
}
