package services

import (
	"errors"

	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
	"chorescape-server/utils"
)

// EnsureProfile returns the profile for an authenticated identity,
// creating a CUSTOMER profile lazily on first contact.
func EnsureProfile(db *gorm.DB, user types.AuthUser) (*models.Profile, *types.AppError) {
	var profile models.Profile
	err := db.Where("user_id = ?", user.ID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.Internal("Failed to load profile", err)
	}

	profile = models.Profile{
		UserID: user.ID,
		Email:  utils.NormalizeEmail(user.Email),
		Role:   models.RoleCustomer,
	}
	if err := db.Create(&profile).Error; err != nil {
		return nil, types.Internal("Failed to create profile", err)
	}
	return &profile, nil
}

// FindProfile loads the profile for an identity without creating one.
func FindProfile(db *gorm.DB, user types.AuthUser) (*models.Profile, *types.AppError) {
	var profile models.Profile
	err := db.Where("user_id = ?", user.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("Profile")
	}
	if err != nil {
		return nil, types.Internal("Failed to load profile", err)
	}
	return &profile, nil
}
