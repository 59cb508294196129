package models

// BookingCreateRequest is the body for authenticated booking creation.
// Date is the calendar date of the visit; address fields are required.
type BookingCreateRequest struct {
	ServiceSlug   string   `json:"serviceSlug"`
	ServiceName   string   `json:"serviceName"`
	SubService    string   `json:"subService"`
	Frequency     string   `json:"frequency"`
	Date          string   `json:"date" binding:"required"`
	TimeSlot      string   `json:"timeSlot"`
	AddressLine   string   `json:"addressLine" binding:"required"`
	City          string   `json:"city" binding:"required"`
	Province      string   `json:"province"`
	Postal        string   `json:"postal"`
	Country       string   `json:"country"`
	Notes         string   `json:"notes"`
	TotalAmount   *float64 `json:"totalAmount"`
	PaymentMethod string   `json:"paymentMethod"`
	PaymentStatus string   `json:"paymentStatus"`
}

// GuestBookingCreateRequest additionally carries guest contact fields.
// GuestEmail is validated by the lifecycle service so the error shape
// matches the rest of the API.
type GuestBookingCreateRequest struct {
	BookingCreateRequest
	GuestEmail string `json:"guestEmail"`
	GuestName  string `json:"guestName"`
	GuestPhone string `json:"guestPhone"`
}

type RescheduleRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

type RebookRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
}

type AssignWorkerRequest struct {
	WorkerID string `json:"workerId"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminBookingUpdateRequest supports partial edits; pointer fields
// distinguish "absent" from "clear".
type AdminBookingUpdateRequest struct {
	Status           *string  `json:"status"`
	Date             *string  `json:"date"`
	TimeSlot         *string  `json:"timeSlot"`
	AddressLine      *string  `json:"addressLine"`
	City             *string  `json:"city"`
	Province         *string  `json:"province"`
	Postal           *string  `json:"postal"`
	Notes            *string  `json:"notes"`
	TotalAmount      *float64 `json:"totalAmount"`
	AssignedWorkerID *string  `json:"assignedWorkerId"`
}

// WorkerBookingList is the worker dashboard projection: the raw rows plus
// status buckets and summary counts.
type WorkerBookingList struct {
	Bookings []Booking            `json:"bookings"`
	Grouped  map[string][]Booking `json:"grouped"`
	Stats    WorkerBookingStats   `json:"stats"`
}

type WorkerBookingStats struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	Accepted   int `json:"accepted"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// Pagination is the list envelope shared by admin list endpoints.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}
