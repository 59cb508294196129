package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
	"chorescape-server/utils"
	ws "chorescape-server/websocket"
)

// BookingService owns the booking lifecycle: creation, worker assignment,
// worker job transitions, and customer reschedule/rebook/cancel. Every
// mutation re-checks authorization against the live row, and every state
// transition is written with a conditional update so concurrent writers
// get a conflict instead of silently clobbering each other.
type BookingService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewBookingService(db *gorm.DB, hub *ws.Hub) *BookingService {
	return &BookingService{db: db, hub: hub}
}

func (s *BookingService) preload() *gorm.DB {
	return s.db.Preload("Customer").Preload("Service").Preload("AssignedWorker")
}

func (s *BookingService) reload(id string) (*models.Booking, *types.AppError) {
	var booking models.Booking
	if err := s.preload().First(&booking, "id = ?", id).Error; err != nil {
		return nil, types.Internal("Failed to load booking", err)
	}
	return &booking, nil
}

func (s *BookingService) find(id string) (*models.Booking, *types.AppError) {
	var booking models.Booking
	err := s.db.First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("Booking")
	}
	if err != nil {
		return nil, types.Internal("Failed to load booking", err)
	}
	return &booking, nil
}

// Create builds a booking for an authenticated customer, lazily creating
// the CUSTOMER profile. Service name/slug are denormalized onto the row.
func (s *BookingService) Create(user types.AuthUser, req *models.BookingCreateRequest) (*models.Booking, *types.AppError) {
	profile, appErr := EnsureProfile(s.db, user)
	if appErr != nil {
		return nil, appErr
	}

	booking, appErr := s.buildBooking(req)
	if appErr != nil {
		return nil, appErr
	}
	booking.CustomerID = &profile.ID

	if err := s.db.Create(booking).Error; err != nil {
		return nil, types.Internal("Failed to create booking", err)
	}

	s.hub.Publish(ws.EventBookingCreated, booking.ID, statusPayload(booking.Status))
	return s.reload(booking.ID)
}

// CreateGuest builds a booking identified only by guest contact fields.
// A matching registered profile is linked for contact purposes but the
// link grants no ownership over the booking.
func (s *BookingService) CreateGuest(req *models.GuestBookingCreateRequest) (*models.Booking, *types.AppError) {
	guestEmail := utils.NormalizeEmail(req.GuestEmail)
	if guestEmail == "" {
		return nil, types.Validation("Guest email is required")
	}

	booking, appErr := s.buildBooking(&req.BookingCreateRequest)
	if appErr != nil {
		return nil, appErr
	}
	booking.GuestEmail = &guestEmail
	booking.GuestName = utils.TrimPtr(&req.GuestName)
	booking.GuestPhone = utils.TrimPtr(&req.GuestPhone)

	var profile models.Profile
	if err := s.db.Where("email = ?", guestEmail).First(&profile).Error; err == nil {
		booking.CustomerID = &profile.ID
	}

	if err := s.db.Create(booking).Error; err != nil {
		return nil, types.Internal("Failed to create booking", err)
	}

	s.hub.Publish(ws.EventBookingCreated, booking.ID, statusPayload(booking.Status))
	return s.reload(booking.ID)
}

func (s *BookingService) buildBooking(req *models.BookingCreateRequest) (*models.Booking, *types.AppError) {
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, types.Validation("Invalid date: %s", req.Date)
	}

	booking := &models.Booking{
		ServiceName:   "Service",
		SubService:    utils.TrimPtr(&req.SubService),
		Frequency:     utils.TrimPtr(&req.Frequency),
		Date:          date,
		TimeSlot:      utils.TrimPtr(&req.TimeSlot),
		AddressLine:   req.AddressLine,
		City:          req.City,
		Province:      defaultString(req.Province, "SK"),
		Postal:        req.Postal,
		Country:       defaultString(req.Country, "Canada"),
		Notes:         utils.TrimPtr(&req.Notes),
		TotalAmount:   req.TotalAmount,
		PaymentMethod: defaultString(req.PaymentMethod, "pay_later"),
		PaymentStatus: defaultString(req.PaymentStatus, "pending"),
		Status:        models.BookingStatusPending,
	}

	if req.ServiceName != "" {
		booking.ServiceName = req.ServiceName
	}
	if req.ServiceSlug != "" {
		var service models.Service
		if err := s.db.Where("slug = ?", req.ServiceSlug).First(&service).Error; err == nil {
			booking.ServiceID = &service.ID
			booking.ServiceSlug = &service.Slug
			if req.ServiceName == "" {
				booking.ServiceName = service.Name
			}
		} else {
			booking.ServiceSlug = utils.StrPtr(req.ServiceSlug)
		}
	}

	return booking, nil
}

// ListMine returns the customer's bookings, newest visit first.
func (s *BookingService) ListMine(profileID string) ([]models.Booking, *types.AppError) {
	var bookings []models.Booking
	err := s.preload().
		Where("customer_id = ?", profileID).
		Order("date DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, types.Internal("Failed to load bookings", err)
	}
	return bookings, nil
}

// GetForCustomer loads one booking and enforces ownership.
func (s *BookingService) GetForCustomer(profileID, id string) (*models.Booking, *types.AppError) {
	booking, appErr := s.ownedBooking(profileID, id, "view")
	if appErr != nil {
		return nil, appErr
	}
	return s.reload(booking.ID)
}

func (s *BookingService) ownedBooking(profileID, id, verb string) (*models.Booking, *types.AppError) {
	booking, appErr := s.find(id)
	if appErr != nil {
		return nil, appErr
	}
	if !booking.OwnedBy(profileID) {
		return nil, types.Authorization(fmt.Sprintf("Not authorized to %s this booking", verb))
	}
	return booking, nil
}

// Cancel sets the booking to CANCELLED. The row is never deleted.
// Terminal bookings cannot be cancelled; rebook exists for the cancelled
// case.
func (s *BookingService) Cancel(profileID, id string) (*models.Booking, *types.AppError) {
	booking, appErr := s.ownedBooking(profileID, id, "cancel")
	if appErr != nil {
		return nil, appErr
	}
	if booking.Status.Terminal() {
		return nil, types.Validation("Cannot cancel a booking with status: %s", booking.Status)
	}

	if appErr := s.transition(booking, map[string]interface{}{
		"status": models.BookingStatusCancelled,
	}); appErr != nil {
		return nil, appErr
	}

	s.hub.Publish(ws.EventBookingStatus, booking.ID, statusPayload(models.BookingStatusCancelled))
	return s.reload(booking.ID)
}

// Rebook creates a fresh PENDING booking copying the descriptive fields
// of an earlier one. The original row is untouched.
func (s *BookingService) Rebook(profileID, id string, req *models.RebookRequest) (*models.Booking, *types.AppError) {
	booking, appErr := s.ownedBooking(profileID, id, "rebook")
	if appErr != nil {
		return nil, appErr
	}

	date := booking.Date
	if req.Date != "" {
		parsed, err := utils.ParseDate(req.Date)
		if err != nil {
			return nil, types.Validation("Invalid date: %s", req.Date)
		}
		date = parsed
	}

	timeSlot := booking.TimeSlot
	if req.TimeSlot != "" {
		timeSlot = utils.StrPtr(req.TimeSlot)
	}

	fresh := &models.Booking{
		CustomerID:    booking.CustomerID,
		GuestEmail:    booking.GuestEmail,
		GuestName:     booking.GuestName,
		GuestPhone:    booking.GuestPhone,
		ServiceID:     booking.ServiceID,
		ServiceName:   booking.ServiceName,
		ServiceSlug:   booking.ServiceSlug,
		SubService:    booking.SubService,
		Frequency:     booking.Frequency,
		Date:          date,
		TimeSlot:      timeSlot,
		AddressLine:   booking.AddressLine,
		City:          booking.City,
		Province:      booking.Province,
		Postal:        booking.Postal,
		Country:       booking.Country,
		Notes:         booking.Notes,
		TotalAmount:   booking.TotalAmount,
		PaymentMethod: booking.PaymentMethod,
		PaymentStatus: "pending",
		Status:        models.BookingStatusPending,
	}

	if err := s.db.Create(fresh).Error; err != nil {
		return nil, types.Internal("Failed to create booking", err)
	}

	s.hub.Publish(ws.EventBookingCreated, fresh.ID, statusPayload(fresh.Status))
	return s.reload(fresh.ID)
}

// Reschedule moves a non-terminal booking to a new date and forces it
// back to PENDING.
func (s *BookingService) Reschedule(profileID, id string, req *models.RescheduleRequest) (*models.Booking, *types.AppError) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, types.Validation("Date is required for rescheduling")
	}

	booking, appErr := s.ownedBooking(profileID, id, "reschedule")
	if appErr != nil {
		return nil, appErr
	}

	switch booking.Status {
	case models.BookingStatusCompleted:
		return nil, types.Validation("Cannot reschedule a completed booking")
	case models.BookingStatusCancelled:
		return nil, types.Validation("Cannot reschedule a cancelled booking. Use rebook instead.")
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, types.Validation("Invalid date: %s", req.Date)
	}

	updates := map[string]interface{}{
		"date":   date,
		"status": models.BookingStatusPending,
	}
	if req.TimeSlot != "" {
		updates["time_slot"] = req.TimeSlot
	}

	if appErr := s.transition(booking, updates); appErr != nil {
		return nil, appErr
	}

	s.hub.Publish(ws.EventBookingStatus, booking.ID, statusPayload(models.BookingStatusPending))
	return s.reload(booking.ID)
}

// ToggleFavorite flips the favorite flag, independent of status.
func (s *BookingService) ToggleFavorite(profileID, id string) (*models.Booking, *types.AppError) {
	booking, appErr := s.ownedBooking(profileID, id, "modify")
	if appErr != nil {
		return nil, appErr
	}

	if err := s.db.Model(booking).Update("is_favorite", !booking.IsFavorite).Error; err != nil {
		return nil, types.Internal("Failed to update booking", err)
	}
	return s.reload(booking.ID)
}

// ListForWorker returns the worker's bookings, optionally filtered by
// status, with the dashboard grouping and summary counts.
func (s *BookingService) ListForWorker(workerID string, status string) (*models.WorkerBookingList, *types.AppError) {
	query := s.preload().Where("assigned_worker_id = ?", workerID)
	if status != "" {
		normalized := models.BookingStatus(strings.ToUpper(status))
		if !normalized.Valid() {
			return nil, types.Validation("Invalid status filter: %s", status)
		}
		query = query.Where("status = ?", normalized)
	}

	var bookings []models.Booking
	if err := query.Order("date ASC").Find(&bookings).Error; err != nil {
		return nil, types.Internal("Failed to load bookings", err)
	}

	grouped := map[string][]models.Booking{
		"assigned":   {},
		"accepted":   {},
		"inProgress": {},
		"completed":  {},
		"cancelled":  {},
	}
	for _, b := range bookings {
		switch b.Status {
		case models.BookingStatusAssigned:
			grouped["assigned"] = append(grouped["assigned"], b)
		case models.BookingStatusAccepted:
			grouped["accepted"] = append(grouped["accepted"], b)
		case models.BookingStatusInProgress:
			grouped["inProgress"] = append(grouped["inProgress"], b)
		case models.BookingStatusCompleted:
			grouped["completed"] = append(grouped["completed"], b)
		case models.BookingStatusCancelled:
			grouped["cancelled"] = append(grouped["cancelled"], b)
		}
	}

	return &models.WorkerBookingList{
		Bookings: bookings,
		Grouped:  grouped,
		Stats: models.WorkerBookingStats{
			Total:      len(bookings),
			Assigned:   len(grouped["assigned"]),
			Accepted:   len(grouped["accepted"]),
			InProgress: len(grouped["inProgress"]),
			Completed:  len(grouped["completed"]),
		},
	}, nil
}

// WorkerTransition runs one of the worker job actions: accept, reject,
// start, complete. The caller must be the assigned worker. Reject clears
// the assignment and returns the booking to the CONFIRMED pool.
func (s *BookingService) WorkerTransition(workerID, id, action string) (*models.Booking, *types.AppError) {
	booking, appErr := s.find(id)
	if appErr != nil {
		return nil, appErr
	}
	if !booking.AssignedTo(workerID) {
		return nil, types.Authorization("This booking is not assigned to you")
	}

	var target models.BookingStatus
	updates := map[string]interface{}{}

	if action == "reject" {
		if booking.Status != models.BookingStatusAssigned {
			return nil, types.InvalidTransition("reject", string(booking.Status), string(models.BookingStatusAssigned))
		}
		target = models.BookingStatusConfirmed
		updates["assigned_worker_id"] = nil
		updates["status"] = target
	} else {
		from, to, ok := models.WorkerTransition(action)
		if !ok {
			return nil, types.Validation("Unknown action: %s", action)
		}
		if booking.Status != from {
			return nil, types.InvalidTransition(action, string(booking.Status), string(from))
		}
		target = to
		updates["status"] = target
	}

	// Conditional update keyed on the state just read: a concurrent
	// transition or reassignment makes this a no-op and surfaces as a
	// conflict instead of a lost update.
	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ? AND assigned_worker_id = ?", booking.ID, booking.Status, workerID).
		Updates(updates)
	if res.Error != nil {
		return nil, types.Internal("Failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, types.Conflict("Booking was modified concurrently. Please refresh and try again.")
	}

	if action == "reject" {
		s.hub.Publish(ws.EventBookingUnassigned, booking.ID, statusPayload(target))
	} else {
		s.hub.Publish(ws.EventBookingStatus, booking.ID, statusPayload(target))
	}
	return s.reload(booking.ID)
}

// AssignWorker sets the assigned worker and moves the booking to
// ASSIGNED in a single write. The worker must hold the WORKER role.
// Overwriting an existing assignment is allowed; the status write is
// still guarded against concurrent transitions.
func (s *BookingService) AssignWorker(id, workerID string) (*models.Booking, *types.AppError) {
	if workerID == "" {
		return nil, types.Validation("workerId is required")
	}

	booking, appErr := s.find(id)
	if appErr != nil {
		return nil, appErr
	}
	if booking.Status.Terminal() {
		return nil, types.Validation("Cannot assign a worker to a booking with status: %s", booking.Status)
	}

	var worker models.Profile
	err := s.db.First(&worker, "id = ?", workerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && worker.Role != models.RoleWorker) {
		return nil, types.NotFound("Worker")
	}
	if err != nil {
		return nil, types.Internal("Failed to load worker", err)
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(map[string]interface{}{
			"assigned_worker_id": workerID,
			"status":             models.BookingStatusAssigned,
		})
	if res.Error != nil {
		return nil, types.Internal("Failed to assign worker", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, types.Conflict("Booking was modified concurrently. Please refresh and try again.")
	}

	s.hub.Publish(ws.EventBookingAssigned, booking.ID, map[string]string{"workerId": workerID})
	return s.reload(booking.ID)
}

// UnassignWorker clears the assignment. Status reverts to CONFIRMED only
// when the booking is currently ASSIGNED; any other status is preserved.
func (s *BookingService) UnassignWorker(id string) (*models.Booking, *types.AppError) {
	booking, appErr := s.find(id)
	if appErr != nil {
		return nil, appErr
	}

	status := booking.Status
	if status == models.BookingStatusAssigned {
		status = models.BookingStatusConfirmed
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(map[string]interface{}{
			"assigned_worker_id": nil,
			"status":             status,
		})
	if res.Error != nil {
		return nil, types.Internal("Failed to unassign worker", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, types.Conflict("Booking was modified concurrently. Please refresh and try again.")
	}

	s.hub.Publish(ws.EventBookingUnassigned, booking.ID, statusPayload(status))
	return s.reload(booking.ID)
}

// AdminList returns a filtered, searched, paginated page of bookings.
func (s *BookingService) AdminList(page, pageSize int, status, search string) ([]models.Booking, *models.Pagination, *types.AppError) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Booking{})
	if status != "" {
		normalized := models.BookingStatus(strings.ToUpper(status))
		if !normalized.Valid() {
			return nil, nil, types.Validation("Invalid status filter: %s", status)
		}
		query = query.Where("status = ?", normalized)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(service_name) LIKE ? OR LOWER(address_line) LIKE ? OR LOWER(city) LIKE ? OR LOWER(guest_name) LIKE ? OR LOWER(guest_email) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, types.Internal("Failed to count bookings", err)
	}

	var bookings []models.Booking
	err := query.
		Preload("Customer").Preload("Service").Preload("AssignedWorker").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bookings).Error
	if err != nil {
		return nil, nil, types.Internal("Failed to load bookings", err)
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return bookings, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// AdminGet loads one booking with relations, no ownership restriction.
func (s *BookingService) AdminGet(id string) (*models.Booking, *types.AppError) {
	var booking models.Booking
	err := s.preload().First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("Booking")
	}
	if err != nil {
		return nil, types.Internal("Failed to load booking", err)
	}
	return &booking, nil
}

// AdminUpdateStatus sets the status to any valid value.
func (s *BookingService) AdminUpdateStatus(id, status string) (*models.Booking, *types.AppError) {
	normalized := models.BookingStatus(strings.ToUpper(status))
	if !normalized.Valid() {
		return nil, types.Validation("Invalid status. Must be one of: %s", statusList())
	}

	booking, appErr := s.find(id)
	if appErr != nil {
		return nil, appErr
	}

	if appErr := s.transition(booking, map[string]interface{}{"status": normalized}); appErr != nil {
		return nil, appErr
	}

	s.hub.Publish(ws.EventBookingStatus, booking.ID, statusPayload(normalized))
	return s.reload(booking.ID)
}

// AdminUpdate applies a partial edit. Reassigning a worker forces the
// status to ASSIGNED unless an explicit status accompanies it.
func (s *BookingService) AdminUpdate(id string, req *models.AdminBookingUpdateRequest) (*models.Booking, *types.AppError) {
	booking, appErr := s.find(id)
	if appErr != nil {
		return nil, appErr
	}

	updates := map[string]interface{}{}

	if req.Status != nil {
		normalized := models.BookingStatus(strings.ToUpper(*req.Status))
		if !normalized.Valid() {
			return nil, types.Validation("Invalid status. Must be one of: %s", statusList())
		}
		updates["status"] = normalized
	}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			return nil, types.Validation("Invalid date: %s", *req.Date)
		}
		updates["date"] = date
	}
	if req.TimeSlot != nil {
		updates["time_slot"] = nilIfEmpty(*req.TimeSlot)
	}
	if req.AddressLine != nil && *req.AddressLine != "" {
		updates["address_line"] = *req.AddressLine
	}
	if req.City != nil && *req.City != "" {
		updates["city"] = *req.City
	}
	if req.Province != nil && *req.Province != "" {
		updates["province"] = *req.Province
	}
	if req.Postal != nil && *req.Postal != "" {
		updates["postal"] = *req.Postal
	}
	if req.Notes != nil {
		updates["notes"] = nilIfEmpty(*req.Notes)
	}
	if req.TotalAmount != nil {
		updates["total_amount"] = *req.TotalAmount
	}
	if req.AssignedWorkerID != nil {
		if *req.AssignedWorkerID != "" {
			var worker models.Profile
			err := s.db.First(&worker, "id = ?", *req.AssignedWorkerID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && worker.Role != models.RoleWorker) {
				return nil, types.Validation("Invalid worker ID")
			}
			if err != nil {
				return nil, types.Internal("Failed to load worker", err)
			}
			updates["assigned_worker_id"] = *req.AssignedWorkerID
			if _, ok := updates["status"]; !ok {
				updates["status"] = models.BookingStatusAssigned
			}
		} else {
			updates["assigned_worker_id"] = nil
		}
	}

	if len(updates) == 0 {
		return s.reload(booking.ID)
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, types.Internal("Failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, types.Conflict("Booking was modified concurrently. Please refresh and try again.")
	}

	if status, ok := updates["status"]; ok {
		s.hub.Publish(ws.EventBookingStatus, booking.ID, statusPayload(status.(models.BookingStatus)))
	}
	return s.reload(booking.ID)
}

// transition applies updates guarded on the status the caller just
// validated against.
func (s *BookingService) transition(booking *models.Booking, updates map[string]interface{}) *types.AppError {
	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(updates)
	if res.Error != nil {
		return types.Internal("Failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.Conflict("Booking was modified concurrently. Please refresh and try again.")
	}
	return nil
}

func statusList() string {
	parts := make([]string, len(models.BookingStatuses))
	for i, s := range models.BookingStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func nilIfEmpty(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func statusPayload(status models.BookingStatus) map[string]string {
	return map[string]string{"status": string(status)}
}
