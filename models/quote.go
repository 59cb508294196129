package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quote is a corporate quote request submitted from the public site.
type Quote struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Email       string    `json:"email" gorm:"size:255;not null;index"`
	Phone       *string   `json:"phone" gorm:"size:30"`
	ServiceType string    `json:"serviceType" gorm:"size:255;not null"`
	Details     *string   `json:"details" gorm:"size:2000"`
	CompanyName *string   `json:"companyName" gorm:"size:255"`
	Status      string    `json:"status" gorm:"size:20;default:'PENDING'"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Quote) TableName() string {
	return "quotes"
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
