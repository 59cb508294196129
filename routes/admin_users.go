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

type adminUserHandler struct {
	db *gorm.DB
}

func RegisterAdminUserRoutes(admin *gin.RouterGroup, d *Deps) {
	h := &adminUserHandler{db: d.DB}

	grp := admin.Group("/users")
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.PATCH("/:id", h.update)
}

func (h *adminUserHandler) list(c *gin.Context) {
	query := h.db.Model(&models.Profile{}).Where("role = ?", models.RoleCustomer)
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern)
	}

	var users []models.Profile
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		fail(c, types.Internal("Failed to load users", err))
		return
	}
	respond(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *adminUserHandler) get(c *gin.Context) {
	var user models.Profile
	err := h.db.First(&user, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("User"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load user", err))
		return
	}

	var bookingCount int64
	h.db.Model(&models.Booking{}).Where("customer_id = ?", user.ID).Count(&bookingCount)

	c.JSON(http.StatusOK, gin.H{
		"message": "User retrieved successfully",
		"data":    user,
		"counts":  gin.H{"bookings": bookingCount},
	})
}

type adminUserUpdateRequest struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (h *adminUserHandler) update(c *gin.Context) {
	var req adminUserUpdateRequest
	if !bind(c, &req) {
		return
	}

	var user models.Profile
	err := h.db.First(&user, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("User"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load user", err))
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.Role != nil {
		role := models.Role(strings.ToUpper(*req.Role))
		switch role {
		case models.RoleCustomer, models.RoleWorker, models.RoleAdmin:
			updates["role"] = role
		default:
			fail(c, types.Validation("Invalid role. Must be one of: CUSTOMER, WORKER, ADMIN"))
			return
		}
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			fail(c, types.Internal("Failed to update user", err))
			return
		}
	}
	respond(c, http.StatusOK, "User profile updated successfully", user)
}
