package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// WorkerApplication is a public application to join as a worker.
// Admins review it; approval flips the linked profile to the WORKER role.
type WorkerApplication struct {
	ID              string            `json:"id" gorm:"primaryKey;size:36"`
	ProfileID       *string           `json:"profileId" gorm:"size:36;index"`
	FullName        string            `json:"fullName" gorm:"size:255;not null"`
	Email           string            `json:"email" gorm:"size:255;not null;index"`
	Phone           *string           `json:"phone" gorm:"size:30"`
	City            *string           `json:"city" gorm:"size:100"`
	Province        *string           `json:"province" gorm:"size:50"`
	WorkEligible    bool              `json:"workEligible" gorm:"default:false"`
	Availability    *string           `json:"availability" gorm:"size:500"`
	Experience      *string           `json:"experience" gorm:"size:2000"`
	TermsAccepted   bool              `json:"termsAccepted" gorm:"not null"`
	TermsAcceptedAt *time.Time        `json:"termsAcceptedAt"`
	Status          ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';check:status IN ('PENDING','APPROVED','REJECTED')"`
	ReviewedAt      *time.Time        `json:"reviewedAt"`
	ReviewedBy      *string           `json:"reviewedBy" gorm:"size:36"`
	CreatedAt       time.Time         `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time         `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (WorkerApplication) TableName() string {
	return "worker_applications"
}

func (a *WorkerApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type DocumentType string

const (
	DocumentTypeWorkAuth DocumentType = "WORK_AUTH"
	DocumentTypeTax      DocumentType = "TAX"
	DocumentTypeID       DocumentType = "ID"
)

func (t DocumentType) Valid() bool {
	return t == DocumentTypeWorkAuth || t == DocumentTypeTax || t == DocumentTypeID
}

type WorkerDocument struct {
	ID              string       `json:"id" gorm:"primaryKey;size:36"`
	WorkerProfileID string       `json:"workerProfileId" gorm:"size:36;not null;index"`
	Type            DocumentType `json:"type" gorm:"type:varchar(20);not null;check:type IN ('WORK_AUTH','TAX','ID')"`
	FileURL         string       `json:"fileUrl" gorm:"size:500;not null"`
	CreatedAt       time.Time    `json:"createdAt" gorm:"autoCreateTime"`
}

func (WorkerDocument) TableName() string {
	return "worker_documents"
}

func (d *WorkerDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
