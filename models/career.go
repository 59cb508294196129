package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CareerApplication struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProfileID *string   `json:"profileId" gorm:"size:36;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	JobTitle  string    `json:"jobTitle" gorm:"size:255;not null"`
	ResumeURL *string   `json:"resumeUrl" gorm:"size:500"`
	Message   *string   `json:"message" gorm:"size:2000"`
	Status    string    `json:"status" gorm:"size:20;default:'PENDING'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (CareerApplication) TableName() string {
	return "career_applications"
}

func (a *CareerApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
