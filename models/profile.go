package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleWorker   Role = "WORKER"
	RoleAdmin    Role = "ADMIN"
)

// Profile is the application-level identity record, 1:1 with an identity
// provider account (UserID is the provider's user id).
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"userId" gorm:"size:64;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FullName  *string   `json:"fullName" gorm:"size:255"`
	Phone     *string   `json:"phone" gorm:"size:30"`
	Role      Role      `json:"role" gorm:"type:varchar(20);default:'CUSTOMER';check:role IN ('CUSTOMER','WORKER','ADMIN')"`
	IsActive  bool      `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProfileSummary is the slim customer/worker shape embedded in booking
// responses.
type ProfileSummary struct {
	ID       string  `json:"id"`
	FullName *string `json:"fullName"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
}

func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{ID: p.ID, FullName: p.FullName, Email: p.Email, Phone: p.Phone}
}
