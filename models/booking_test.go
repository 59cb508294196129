package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusValid(t *testing.T) {
	for _, status := range BookingStatuses {
		assert.True(t, status.Valid(), "expected %s to be valid", status)
	}
	assert.False(t, BookingStatus("ARCHIVED").Valid())
	assert.False(t, BookingStatus("pending").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())

	for _, status := range []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusAssigned,
		BookingStatusAccepted,
		BookingStatusInProgress,
	} {
		assert.False(t, status.Terminal(), "expected %s to be non-terminal", status)
	}
}

func TestWorkerTransition(t *testing.T) {
	tests := []struct {
		action string
		from   BookingStatus
		to     BookingStatus
		ok     bool
	}{
		{action: "accept", from: BookingStatusAssigned, to: BookingStatusAccepted, ok: true},
		{action: "start", from: BookingStatusAccepted, to: BookingStatusInProgress, ok: true},
		{action: "complete", from: BookingStatusInProgress, to: BookingStatusCompleted, ok: true},
		{action: "reject", ok: false},
		{action: "pause", ok: false},
		{action: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			from, to, ok := WorkerTransition(tt.action)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.from, from)
				assert.Equal(t, tt.to, to)
			}
		})
	}
}

func TestBookingOwnership(t *testing.T) {
	customerID := "profile-1"
	workerID := "worker-1"

	guest := &Booking{}
	assert.False(t, guest.OwnedBy(customerID))
	assert.False(t, guest.AssignedTo(workerID))

	owned := &Booking{CustomerID: &customerID, AssignedWorkerID: &workerID}
	assert.True(t, owned.OwnedBy(customerID))
	assert.False(t, owned.OwnedBy("profile-2"))
	assert.True(t, owned.AssignedTo(workerID))
	assert.False(t, owned.AssignedTo("worker-2"))
}
