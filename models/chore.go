package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chore is a one-off task request. Like bookings, chores can be created
// by guests carrying contact fields instead of a profile link.
type Chore struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	CustomerID  *string   `json:"customerId" gorm:"size:36;index"`
	GuestEmail  *string   `json:"guestEmail" gorm:"size:255"`
	GuestName   *string   `json:"guestName" gorm:"size:255"`
	GuestPhone  *string   `json:"guestPhone" gorm:"size:30"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Category    string    `json:"category" gorm:"size:100;default:'Other'"`
	Description *string   `json:"description" gorm:"size:2000"`
	Budget      *float64  `json:"budget" gorm:"type:decimal(10,2)"`
	Address     *string   `json:"address" gorm:"size:500"`
	City        *string   `json:"city" gorm:"size:100"`
	Province    *string   `json:"province" gorm:"size:50"`
	Postal      *string   `json:"postal" gorm:"size:20"`
	Status      string    `json:"status" gorm:"size:20;default:'PENDING'"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Customer *Profile `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Chore) TableName() string {
	return "chores"
}

func (c *Chore) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
