package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
	ws "chorescape-server/websocket"
)

func setupBookingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Service{}, &models.ServiceOption{}, &models.Booking{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newTestBookingService(t *testing.T) (*BookingService, *gorm.DB) {
	db := setupBookingTestDB(t)
	return NewBookingService(db, ws.NewHub()), db
}

func createTestProfile(t *testing.T, db *gorm.DB, role models.Role, email string) *models.Profile {
	profile := &models.Profile{
		UserID: "uid-" + email,
		Email:  email,
		Role:   role,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func createTestBooking(t *testing.T, db *gorm.DB, customerID *string, status models.BookingStatus) *models.Booking {
	booking := &models.Booking{
		CustomerID:  customerID,
		ServiceName: "Cleaning",
		Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		AddressLine: "123 Main St",
		City:        "Saskatoon",
		Province:    "SK",
		Country:     "Canada",
		Status:      status,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func assignTestWorker(t *testing.T, db *gorm.DB, booking *models.Booking, workerID string, status models.BookingStatus) {
	require.NoError(t, db.Model(booking).Updates(map[string]interface{}{
		"assigned_worker_id": workerID,
		"status":             status,
	}).Error)
	booking.AssignedWorkerID = &workerID
	booking.Status = status
}

func TestCreateBooking(t *testing.T) {
	svc, db := newTestBookingService(t)

	user := types.AuthUser{ID: "auth-user-1", Email: "customer@example.com"}
	booking, appErr := svc.Create(user, &models.BookingCreateRequest{
		ServiceName: "Lawn Care",
		Date:        "2026-10-15",
		AddressLine: "42 Spruce Ave",
		City:        "Regina",
	})
	require.Nil(t, appErr)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, "Lawn Care", booking.ServiceName)
	assert.Equal(t, "SK", booking.Province)
	assert.Equal(t, "Canada", booking.Country)
	assert.Equal(t, "pay_later", booking.PaymentMethod)
	assert.Equal(t, "pending", booking.PaymentStatus)

	// Profile is created lazily for a first-time customer.
	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, models.RoleCustomer, profile.Role)
	require.NotNil(t, booking.CustomerID)
	assert.Equal(t, profile.ID, *booking.CustomerID)
}

func TestCreateBookingResolvesServiceSlug(t *testing.T) {
	svc, db := newTestBookingService(t)

	service := &models.Service{ID: "svc-1", Name: "Maid Service", Slug: "maid", IsActive: true}
	require.NoError(t, db.Create(service).Error)

	booking, appErr := svc.Create(types.AuthUser{ID: "auth-user-2", Email: "c2@example.com"}, &models.BookingCreateRequest{
		ServiceSlug: "maid",
		Date:        "2026-10-15",
		AddressLine: "42 Spruce Ave",
		City:        "Regina",
	})
	require.Nil(t, appErr)

	require.NotNil(t, booking.ServiceID)
	assert.Equal(t, "svc-1", *booking.ServiceID)
	assert.Equal(t, "Maid Service", booking.ServiceName)
}

func TestCreateBookingInvalidDate(t *testing.T) {
	svc, _ := newTestBookingService(t)

	_, appErr := svc.Create(types.AuthUser{ID: "auth-user-3", Email: "c3@example.com"}, &models.BookingCreateRequest{
		Date:        "next tuesday",
		AddressLine: "42 Spruce Ave",
		City:        "Regina",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindValidation, appErr.Kind)
}

func TestCreateGuestBooking(t *testing.T) {
	svc, db := newTestBookingService(t)

	_, appErr := svc.CreateGuest(&models.GuestBookingCreateRequest{
		BookingCreateRequest: models.BookingCreateRequest{
			Date:        "2026-10-15",
			AddressLine: "42 Spruce Ave",
			City:        "Regina",
		},
	})
	require.NotNil(t, appErr)
	assert.Equal(t, "Guest email is required", appErr.Message)

	// Nothing was persisted for the rejected request.
	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// An unknown guest email leaves the booking unowned.
	unowned, appErr := svc.CreateGuest(&models.GuestBookingCreateRequest{
		BookingCreateRequest: models.BookingCreateRequest{
			Date:        "2026-10-15",
			AddressLine: "42 Spruce Ave",
			City:        "Regina",
		},
		GuestEmail: "stranger@example.com",
	})
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusPending, unowned.Status)
	assert.Nil(t, unowned.CustomerID)

	// A guest email matching a registered profile links the booking.
	profile := createTestProfile(t, db, models.RoleCustomer, "guest@example.com")
	booking, appErr := svc.CreateGuest(&models.GuestBookingCreateRequest{
		BookingCreateRequest: models.BookingCreateRequest{
			Date:        "2026-10-15",
			AddressLine: "42 Spruce Ave",
			City:        "Regina",
		},
		GuestEmail: "  Guest@Example.com ",
		GuestName:  "Pat Guest",
	})
	require.Nil(t, appErr)
	require.NotNil(t, booking.GuestEmail)
	assert.Equal(t, "guest@example.com", *booking.GuestEmail)
	require.NotNil(t, booking.CustomerID)
	assert.Equal(t, profile.ID, *booking.CustomerID)
}

func TestCancelBooking(t *testing.T) {
	svc, db := newTestBookingService(t)
	customer := createTestProfile(t, db, models.RoleCustomer, "cancel@example.com")

	booking := createTestBooking(t, db, &customer.ID, models.BookingStatusPending)
	updated, appErr := svc.Cancel(customer.ID, booking.ID)
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusCancelled, updated.Status)

	// Terminal bookings stay put.
	done := createTestBooking(t, db, &customer.ID, models.BookingStatusCompleted)
	_, appErr = svc.Cancel(customer.ID, done.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, "Cannot cancel a booking with status: COMPLETED", appErr.Message)

	// Only the owner can cancel.
	other := createTestProfile(t, db, models.RoleCustomer, "other@example.com")
	_, appErr = svc.Cancel(other.ID, booking.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindAuthorization, appErr.Kind)
	assert.Equal(t, "Not authorized to cancel this booking", appErr.Message)
}

func TestRescheduleBooking(t *testing.T) {
	svc, db := newTestBookingService(t)
	customer := createTestProfile(t, db, models.RoleCustomer, "resched@example.com")

	booking := createTestBooking(t, db, &customer.ID, models.BookingStatusConfirmed)

	_, appErr := svc.Reschedule(customer.ID, booking.ID, &models.RescheduleRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, "Date is required for rescheduling", appErr.Message)

	updated, appErr := svc.Reschedule(customer.ID, booking.ID, &models.RescheduleRequest{
		Date:     "2026-11-20",
		TimeSlot: "afternoon",
	})
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusPending, updated.Status)
	assert.Equal(t, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), updated.Date)
	require.NotNil(t, updated.TimeSlot)
	assert.Equal(t, "afternoon", *updated.TimeSlot)

	completed := createTestBooking(t, db, &customer.ID, models.BookingStatusCompleted)
	_, appErr = svc.Reschedule(customer.ID, completed.ID, &models.RescheduleRequest{Date: "2026-11-20"})
	require.NotNil(t, appErr)
	assert.Equal(t, "Cannot reschedule a completed booking", appErr.Message)

	cancelled := createTestBooking(t, db, &customer.ID, models.BookingStatusCancelled)
	_, appErr = svc.Reschedule(customer.ID, cancelled.ID, &models.RescheduleRequest{Date: "2026-11-20"})
	require.NotNil(t, appErr)
	assert.Equal(t, "Cannot reschedule a cancelled booking. Use rebook instead.", appErr.Message)
}

func TestRebookBooking(t *testing.T) {
	svc, db := newTestBookingService(t)
	customer := createTestProfile(t, db, models.RoleCustomer, "rebook@example.com")

	original := createTestBooking(t, db, &customer.ID, models.BookingStatusCancelled)

	fresh, appErr := svc.Rebook(customer.ID, original.ID, &models.RebookRequest{Date: "2026-12-01"})
	require.Nil(t, appErr)

	assert.NotEqual(t, original.ID, fresh.ID)
	assert.Equal(t, models.BookingStatusPending, fresh.Status)
	assert.Equal(t, "pending", fresh.PaymentStatus)
	assert.Equal(t, original.AddressLine, fresh.AddressLine)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), fresh.Date)

	// The original row is untouched.
	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", original.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, reloaded.Status)
}

func TestToggleFavorite(t *testing.T) {
	svc, db := newTestBookingService(t)
	customer := createTestProfile(t, db, models.RoleCustomer, "fav@example.com")
	booking := createTestBooking(t, db, &customer.ID, models.BookingStatusCompleted)

	updated, appErr := svc.ToggleFavorite(customer.ID, booking.ID)
	require.Nil(t, appErr)
	assert.True(t, updated.IsFavorite)

	updated, appErr = svc.ToggleFavorite(customer.ID, booking.ID)
	require.Nil(t, appErr)
	assert.False(t, updated.IsFavorite)
}

func TestWorkerTransitions(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "worker@example.com")

	tests := []struct {
		name    string
		action  string
		from    models.BookingStatus
		want    models.BookingStatus
		wantErr string
	}{
		{name: "accept from assigned", action: "accept", from: models.BookingStatusAssigned, want: models.BookingStatusAccepted},
		{name: "start from accepted", action: "start", from: models.BookingStatusAccepted, want: models.BookingStatusInProgress},
		{name: "complete from in progress", action: "complete", from: models.BookingStatusInProgress, want: models.BookingStatusCompleted},
		{name: "accept out of order", action: "accept", from: models.BookingStatusInProgress,
			wantErr: "Cannot accept booking with status: IN_PROGRESS. Only ASSIGNED bookings can be accepted."},
		{name: "start before accept", action: "start", from: models.BookingStatusAssigned,
			wantErr: "Cannot start booking with status: ASSIGNED. Only ACCEPTED bookings can be started."},
		{name: "unknown action", action: "pause", from: models.BookingStatusAccepted,
			wantErr: "Unknown action: pause"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := createTestBooking(t, db, nil, models.BookingStatusPending)
			assignTestWorker(t, db, booking, worker.ID, tt.from)

			updated, appErr := svc.WorkerTransition(worker.ID, booking.ID, tt.action)
			if tt.wantErr != "" {
				require.NotNil(t, appErr)
				assert.Equal(t, tt.wantErr, appErr.Message)
				return
			}
			require.Nil(t, appErr)
			assert.Equal(t, tt.want, updated.Status)
		})
	}
}

func TestWorkerTransitionRequiresAssignment(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "worker2@example.com")
	intruder := createTestProfile(t, db, models.RoleWorker, "intruder@example.com")

	booking := createTestBooking(t, db, nil, models.BookingStatusPending)
	assignTestWorker(t, db, booking, worker.ID, models.BookingStatusAssigned)

	_, appErr := svc.WorkerTransition(intruder.ID, booking.ID, "accept")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindAuthorization, appErr.Kind)
	assert.Equal(t, "This booking is not assigned to you", appErr.Message)
}

func TestWorkerReject(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "reject@example.com")

	booking := createTestBooking(t, db, nil, models.BookingStatusPending)
	assignTestWorker(t, db, booking, worker.ID, models.BookingStatusAssigned)

	updated, appErr := svc.WorkerTransition(worker.ID, booking.ID, "reject")
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
	assert.Nil(t, updated.AssignedWorkerID)

	// Once the job is accepted, rejecting is no longer an option.
	accepted := createTestBooking(t, db, nil, models.BookingStatusPending)
	assignTestWorker(t, db, accepted, worker.ID, models.BookingStatusAccepted)
	_, appErr = svc.WorkerTransition(worker.ID, accepted.ID, "reject")
	require.NotNil(t, appErr)
	assert.Equal(t, "Cannot reject booking with status: ACCEPTED. Only ASSIGNED bookings can be rejected.", appErr.Message)
}

func TestAssignWorker(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "assignee@example.com")
	customer := createTestProfile(t, db, models.RoleCustomer, "notaworker@example.com")

	booking := createTestBooking(t, db, nil, models.BookingStatusConfirmed)

	_, appErr := svc.AssignWorker(booking.ID, "")
	require.NotNil(t, appErr)
	assert.Equal(t, "workerId is required", appErr.Message)

	_, appErr = svc.AssignWorker(booking.ID, customer.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, "Worker not found", appErr.Message)

	updated, appErr := svc.AssignWorker(booking.ID, worker.ID)
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedWorkerID)
	assert.Equal(t, worker.ID, *updated.AssignedWorkerID)

	terminal := createTestBooking(t, db, nil, models.BookingStatusCancelled)
	_, appErr = svc.AssignWorker(terminal.ID, worker.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, "Cannot assign a worker to a booking with status: CANCELLED", appErr.Message)
}

func TestUnassignWorker(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "unassign@example.com")

	assigned := createTestBooking(t, db, nil, models.BookingStatusPending)
	assignTestWorker(t, db, assigned, worker.ID, models.BookingStatusAssigned)

	updated, appErr := svc.UnassignWorker(assigned.ID)
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
	assert.Nil(t, updated.AssignedWorkerID)

	// Unassigning mid-job clears the worker but keeps the status.
	inProgress := createTestBooking(t, db, nil, models.BookingStatusPending)
	assignTestWorker(t, db, inProgress, worker.ID, models.BookingStatusInProgress)

	updated, appErr = svc.UnassignWorker(inProgress.ID)
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusInProgress, updated.Status)
	assert.Nil(t, updated.AssignedWorkerID)
}

func TestListForWorker(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "board@example.com")

	for _, status := range []models.BookingStatus{
		models.BookingStatusAssigned,
		models.BookingStatusAssigned,
		models.BookingStatusAccepted,
		models.BookingStatusInProgress,
		models.BookingStatusCompleted,
	} {
		b := createTestBooking(t, db, nil, models.BookingStatusPending)
		assignTestWorker(t, db, b, worker.ID, status)
	}
	// Another worker's job must not leak into the list.
	other := createTestProfile(t, db, models.RoleWorker, "board2@example.com")
	b := createTestBooking(t, db, nil, models.BookingStatusPending)
	assignTestWorker(t, db, b, other.ID, models.BookingStatusAssigned)

	list, appErr := svc.ListForWorker(worker.ID, "")
	require.Nil(t, appErr)
	assert.Equal(t, 5, list.Stats.Total)
	assert.Equal(t, 2, list.Stats.Assigned)
	assert.Equal(t, 1, list.Stats.Accepted)
	assert.Equal(t, 1, list.Stats.InProgress)
	assert.Equal(t, 1, list.Stats.Completed)
	assert.Len(t, list.Grouped["assigned"], 2)
	assert.Len(t, list.Grouped["cancelled"], 0)

	filtered, appErr := svc.ListForWorker(worker.ID, "assigned")
	require.Nil(t, appErr)
	assert.Len(t, filtered.Bookings, 2)

	_, appErr = svc.ListForWorker(worker.ID, "SLEEPING")
	require.NotNil(t, appErr)
	assert.Equal(t, "Invalid status filter: SLEEPING", appErr.Message)
}

func TestAdminList(t *testing.T) {
	svc, db := newTestBookingService(t)

	for i := 0; i < 3; i++ {
		createTestBooking(t, db, nil, models.BookingStatusPending)
	}
	confirmed := createTestBooking(t, db, nil, models.BookingStatusConfirmed)
	require.NoError(t, db.Model(confirmed).Update("city", "Moose Jaw").Error)

	bookings, pagination, appErr := svc.AdminList(1, 2, "", "")
	require.Nil(t, appErr)
	assert.Len(t, bookings, 2)
	assert.Equal(t, int64(4), pagination.Total)
	assert.Equal(t, int64(2), pagination.TotalPages)

	bookings, _, appErr = svc.AdminList(1, 20, "pending", "")
	require.Nil(t, appErr)
	assert.Len(t, bookings, 3)

	bookings, _, appErr = svc.AdminList(1, 20, "", "moose")
	require.Nil(t, appErr)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Moose Jaw", bookings[0].City)

	_, _, appErr = svc.AdminList(1, 20, "NOPE", "")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindValidation, appErr.Kind)
}

func TestAdminUpdateStatus(t *testing.T) {
	svc, db := newTestBookingService(t)
	booking := createTestBooking(t, db, nil, models.BookingStatusPending)

	updated, appErr := svc.AdminUpdateStatus(booking.ID, "confirmed")
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)

	_, appErr = svc.AdminUpdateStatus(booking.ID, "ARCHIVED")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Message, "Invalid status. Must be one of:")
}

func TestAdminUpdateReassignForcesAssigned(t *testing.T) {
	svc, db := newTestBookingService(t)
	worker := createTestProfile(t, db, models.RoleWorker, "forced@example.com")
	booking := createTestBooking(t, db, nil, models.BookingStatusConfirmed)

	workerID := worker.ID
	updated, appErr := svc.AdminUpdate(booking.ID, &models.AdminBookingUpdateRequest{
		AssignedWorkerID: &workerID,
	})
	require.Nil(t, appErr)
	assert.Equal(t, models.BookingStatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedWorkerID)
	assert.Equal(t, worker.ID, *updated.AssignedWorkerID)

	// An empty worker id clears the assignment.
	empty := ""
	updated, appErr = svc.AdminUpdate(booking.ID, &models.AdminBookingUpdateRequest{
		AssignedWorkerID: &empty,
	})
	require.Nil(t, appErr)
	assert.Nil(t, updated.AssignedWorkerID)
}

func TestTransitionDetectsConcurrentWrite(t *testing.T) {
	svc, db := newTestBookingService(t)
	booking := createTestBooking(t, db, nil, models.BookingStatusPending)

	// Another writer moves the booking after our read.
	require.NoError(t, db.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("status", models.BookingStatusConfirmed).Error)

	appErr := svc.transition(booking, map[string]interface{}{
		"status": models.BookingStatusCancelled,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindConflict, appErr.Kind)
	assert.Equal(t, "Booking was modified concurrently. Please refresh and try again.", appErr.Message)
}
