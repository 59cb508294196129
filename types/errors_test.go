package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("Booking"), http.StatusNotFound},
		{Authorization("denied"), http.StatusForbidden},
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{Conflict("stale"), http.StatusConflict},
		{UpstreamUnavailable("provider down", nil), http.StatusServiceUnavailable},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus())
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Booking not found", NotFound("Booking").Message)
	assert.Equal(t, "Worker not found", NotFound("Worker").Message)
}

func TestInvalidTransitionMessage(t *testing.T) {
	tests := []struct {
		action, current, required string
		want                      string
	}{
		{"accept", "IN_PROGRESS", "ASSIGNED",
			"Cannot accept booking with status: IN_PROGRESS. Only ASSIGNED bookings can be accepted."},
		{"start", "ASSIGNED", "ACCEPTED",
			"Cannot start booking with status: ASSIGNED. Only ACCEPTED bookings can be started."},
		{"complete", "ACCEPTED", "IN_PROGRESS",
			"Cannot complete booking with status: ACCEPTED. Only IN_PROGRESS bookings can be completed."},
		{"reject", "ACCEPTED", "ASSIGNED",
			"Cannot reject booking with status: ACCEPTED. Only ASSIGNED bookings can be rejected."},
	}
	for _, tt := range tests {
		appErr := InvalidTransition(tt.action, tt.current, tt.required)
		assert.Equal(t, KindValidation, appErr.Kind)
		assert.Equal(t, tt.want, appErr.Message)
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Internal("Failed to load booking", cause)

	assert.Equal(t, "Failed to load booking: connection refused", appErr.Error())
	assert.ErrorIs(t, appErr, cause)

	bare := Validation("bad input")
	assert.Equal(t, "bad input", bare.Error())
}
