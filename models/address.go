package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProfileID string    `json:"profileId" gorm:"size:36;not null;index"`
	Label     *string   `json:"label" gorm:"size:100"`
	FullName  *string   `json:"fullName" gorm:"size:255"`
	Phone     *string   `json:"phone" gorm:"size:30"`
	Street    string    `json:"street" gorm:"size:500;not null"`
	Unit      *string   `json:"unit" gorm:"size:50"`
	City      string    `json:"city" gorm:"size:100;not null"`
	Province  string    `json:"province" gorm:"size:50;default:'SK'"`
	Postal    string    `json:"postal" gorm:"size:20"`
	Country   string    `json:"country" gorm:"size:100;default:'Canada'"`
	IsDefault bool      `json:"isDefault" gorm:"default:false"`
	IsActive  bool      `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
