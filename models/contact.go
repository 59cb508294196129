package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactStatus string

const (
	ContactStatusNew     ContactStatus = "NEW"
	ContactStatusRead    ContactStatus = "READ"
	ContactStatusReplied ContactStatus = "REPLIED"
)

type ContactMessage struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	Name       string        `json:"name" gorm:"size:255;not null"`
	Email      string        `json:"email" gorm:"size:255;not null"`
	Subject    string        `json:"subject" gorm:"size:500;not null"`
	Message    string        `json:"message" gorm:"size:5000;not null"`
	Status     ContactStatus `json:"status" gorm:"type:varchar(20);default:'NEW';check:status IN ('NEW','READ','REPLIED')"`
	AdminNotes *string       `json:"adminNotes" gorm:"size:2000"`
	RepliedAt  *time.Time    `json:"repliedAt"`
	RepliedBy  *string       `json:"repliedBy" gorm:"size:36"`
	CreatedAt  time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time     `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
