package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusAssigned   BookingStatus = "ASSIGNED"
	BookingStatusAccepted   BookingStatus = "ACCEPTED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// BookingStatuses lists every persistable status, in lifecycle order.
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusAssigned,
	BookingStatusAccepted,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves this status.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// workerTransitions maps a worker action to its required current status
// and resulting status. Rejection is special-cased (it also clears the
// assignment) and handled by the lifecycle service.
var workerTransitions = map[string]struct {
	From BookingStatus
	To   BookingStatus
}{
	"accept":   {From: BookingStatusAssigned, To: BookingStatusAccepted},
	"start":    {From: BookingStatusAccepted, To: BookingStatusInProgress},
	"complete": {From: BookingStatusInProgress, To: BookingStatusCompleted},
}

// WorkerTransition returns the transition for a worker action.
func WorkerTransition(action string) (from, to BookingStatus, ok bool) {
	t, ok := workerTransitions[action]
	return t.From, t.To, ok
}

// Booking is the central entity of the lifecycle manager. Service fields
// are denormalized at creation time so later catalog edits never alter
// historical records.
type Booking struct {
	ID               string        `json:"id" gorm:"primaryKey;size:36"`
	CustomerID       *string       `json:"customerId" gorm:"size:36;index"`
	GuestEmail       *string       `json:"guestEmail" gorm:"size:255"`
	GuestName        *string       `json:"guestName" gorm:"size:255"`
	GuestPhone       *string       `json:"guestPhone" gorm:"size:30"`
	AssignedWorkerID *string       `json:"assignedWorkerId" gorm:"size:36;index"`
	ServiceID        *string       `json:"serviceId" gorm:"size:36"`
	ServiceName      string        `json:"serviceName" gorm:"size:255;not null"`
	ServiceSlug      *string       `json:"serviceSlug" gorm:"size:255"`
	SubService       *string       `json:"subService" gorm:"size:255"`
	Frequency        *string       `json:"frequency" gorm:"size:100"`
	Date             time.Time     `json:"date" gorm:"not null;index"`
	TimeSlot         *string       `json:"timeSlot" gorm:"size:100"`
	AddressLine      string        `json:"addressLine" gorm:"size:500;not null"`
	City             string        `json:"city" gorm:"size:100;not null"`
	Province         string        `json:"province" gorm:"size:50;default:'SK'"`
	Postal           string        `json:"postal" gorm:"size:20"`
	Country          string        `json:"country" gorm:"size:100;default:'Canada'"`
	Notes            *string       `json:"notes" gorm:"size:2000"`
	TotalAmount      *float64      `json:"totalAmount" gorm:"type:decimal(10,2)"`
	IsFavorite       bool          `json:"isFavorite" gorm:"default:false"`
	PaymentMethod    string        `json:"paymentMethod" gorm:"size:50;default:'pay_later'"`
	PaymentStatus    string        `json:"paymentStatus" gorm:"size:50;default:'pending'"`
	PaidAt           *time.Time    `json:"paidAt"`
	Status           BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index;check:status IN ('PENDING','CONFIRMED','ASSIGNED','ACCEPTED','IN_PROGRESS','COMPLETED','CANCELLED')"`
	CreatedAt        time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time     `json:"updatedAt" gorm:"autoUpdateTime"`

	Customer       *Profile `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	AssignedWorker *Profile `json:"assignedWorker,omitempty" gorm:"foreignKey:AssignedWorkerID"`
	Service        *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether the booking belongs to the given customer
// profile. Guest bookings without a linked profile are owned by nobody.
func (b *Booking) OwnedBy(profileID string) bool {
	return b.CustomerID != nil && *b.CustomerID == profileID
}

// AssignedTo reports whether the booking is assigned to the given worker
// profile.
func (b *Booking) AssignedTo(profileID string) bool {
	return b.AssignedWorkerID != nil && *b.AssignedWorkerID == profileID
}
