package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceTypeResidential ServiceType = "RESIDENTIAL"
	ServiceTypeCorporate   ServiceType = "CORPORATE"
)

func (t ServiceType) Valid() bool {
	return t == ServiceTypeResidential || t == ServiceTypeCorporate
}

// Service is a catalog entry. Bookings reference it softly and copy its
// name/slug at creation time.
type Service struct {
	ID            string      `json:"id" gorm:"primaryKey;size:36"`
	Name          string      `json:"name" gorm:"size:255;not null"`
	Slug          string      `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Type          ServiceType `json:"type" gorm:"type:varchar(20);default:'RESIDENTIAL';check:type IN ('RESIDENTIAL','CORPORATE')"`
	Description   *string     `json:"description" gorm:"size:2000"`
	BasePrice     *float64    `json:"basePrice" gorm:"type:decimal(10,2)"`
	ImageURL      *string     `json:"imageUrl" gorm:"size:500"`
	BookingBlocks *string     `json:"bookingBlocks" gorm:"type:text"`
	IsActive      bool        `json:"isActive" gorm:"default:true"`
	CreatedAt     time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`

	Options []ServiceOption `json:"options,omitempty" gorm:"foreignKey:ServiceID"`
}

func (Service) TableName() string {
	return "services"
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ServiceOption is a named sub-service. Price and PriceModifier are
// mutually exclusive: an option carries either an absolute price or a
// delta applied to the service base price, never both.
type ServiceOption struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	ServiceID     string    `json:"serviceId" gorm:"size:36;not null;index"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Description   *string   `json:"description" gorm:"size:1000"`
	Price         *float64  `json:"price" gorm:"type:decimal(10,2)"`
	PriceModifier *float64  `json:"priceModifier" gorm:"type:decimal(10,2)"`
	IsActive      bool      `json:"isActive" gorm:"default:true"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (ServiceOption) TableName() string {
	return "service_options"
}

func (o *ServiceOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
