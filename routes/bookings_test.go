package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chorescape-server/config"
	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
	"chorescape-server/types"
	ws "chorescape-server/websocket"
)

const testJWTSecret = "route-test-secret"

func setupRouteTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Service{},
		&models.ServiceOption{},
		&models.Booking{},
		&models.WorkerDocument{},
		&models.Chore{},
		&models.Quote{},
		&models.CareerApplication{},
	))

	cfg := &config.Config{}
	cfg.Identity.JWTSecret = testJWTSecret

	hub := ws.NewHub()
	d := &Deps{
		Cfg:       cfg,
		DB:        db,
		Hub:       hub,
		Bookings:  services.NewBookingService(db, hub),
		Identity:  services.NewIdentityService(cfg),
		Analytics: services.NewAnalyticsService(db),
	}

	r := gin.New()
	api := r.Group("/api")
	RegisterBookingRoutes(api, d)
	RegisterWorkerRoutes(api, d)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(cfg.Identity.JWTSecret))
	admin.Use(middleware.RequireRole(db, models.RoleAdmin))
	RegisterAdminBookingRoutes(admin, d)
	RegisterAdminMiscRoutes(admin, d)

	return r, db
}

func routeTestProfile(t *testing.T, db *gorm.DB, role models.Role, email string) *models.Profile {
	profile := &models.Profile{UserID: "uid-" + email, Email: email, Role: role}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func routeTestBooking(t *testing.T, db *gorm.DB, customerID *string, status models.BookingStatus) *models.Booking {
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

func bearerToken(t *testing.T, profile *models.Profile) string {
	claims := types.Claims{
		Email: profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGuestBookingEndpoint(t *testing.T) {
	r, _ := setupRouteTest(t)

	w := doJSON(r, http.MethodPost, "/api/bookings/guest", "", map[string]interface{}{
		"date":        "2026-10-15",
		"addressLine": "42 Spruce Ave",
		"city":        "Regina",
		"guestEmail":  "guest@example.com",
		"guestName":   "Pat Guest",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	body := parseBody(t, w)
	assert.Equal(t, "Booking created successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, "guest@example.com", data["guestEmail"])

	// Without a guest email the request is rejected.
	w = doJSON(r, http.MethodPost, "/api/bookings/guest", "", map[string]interface{}{
		"date":        "2026-10-15",
		"addressLine": "42 Spruce Ave",
		"city":        "Regina",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Guest email is required", parseBody(t, w)["message"])
}

func TestCustomerBookingEndpoints(t *testing.T) {
	r, db := setupRouteTest(t)
	customer := routeTestProfile(t, db, models.RoleCustomer, "customer@example.com")
	auth := bearerToken(t, customer)

	// Unauthenticated creation is rejected.
	w := doJSON(r, http.MethodPost, "/api/bookings", "", map[string]interface{}{
		"date": "2026-10-15", "addressLine": "42 Spruce Ave", "city": "Regina",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/bookings", auth, map[string]interface{}{
		"date":        "2026-10-15",
		"addressLine": "42 Spruce Ave",
		"city":        "Regina",
		"serviceName": "Lawn Care",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := parseBody(t, w)["data"].(map[string]interface{})
	bookingID := created["id"].(string)

	// Missing required fields fail binding.
	w = doJSON(r, http.MethodPost, "/api/bookings", auth, map[string]interface{}{
		"date": "2026-10-15",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/bookings/mine", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := parseBody(t, w)["data"].([]interface{})
	assert.Len(t, list, 1)

	w = doJSON(r, http.MethodGet, "/api/bookings/"+bookingID, auth, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Another customer cannot view it.
	other := routeTestProfile(t, db, models.RoleCustomer, "other@example.com")
	w = doJSON(r, http.MethodGet, "/api/bookings/"+bookingID, bearerToken(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to view this booking", parseBody(t, w)["message"])

	w = doJSON(r, http.MethodPost, "/api/bookings/"+bookingID+"/reschedule", auth, map[string]interface{}{
		"date": "2026-11-01",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Booking rescheduled successfully", parseBody(t, w)["message"])

	w = doJSON(r, http.MethodDelete, "/api/bookings/"+bookingID, auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, "Booking cancelled successfully", body["message"])
	assert.Equal(t, "CANCELLED", body["data"].(map[string]interface{})["status"])

	w = doJSON(r, http.MethodPost, "/api/bookings/"+bookingID+"/rebook", auth, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, w.Code)
	rebooked := parseBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", rebooked["status"])
	assert.NotEqual(t, bookingID, rebooked["id"])
}

func TestWorkerBookingEndpoints(t *testing.T) {
	r, db := setupRouteTest(t)
	worker := routeTestProfile(t, db, models.RoleWorker, "worker@example.com")
	auth := bearerToken(t, worker)

	booking := routeTestBooking(t, db, nil, models.BookingStatusAssigned)
	require.NoError(t, db.Model(booking).Update("assigned_worker_id", worker.ID).Error)

	// Customers are locked out of the job board.
	customer := routeTestProfile(t, db, models.RoleCustomer, "nojobs@example.com")
	w := doJSON(r, http.MethodGet, "/api/worker/bookings", bearerToken(t, customer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/worker/bookings", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := parseBody(t, w)["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["assigned"])

	for _, step := range []struct {
		action  string
		status  string
		message string
	}{
		{"accept", "ACCEPTED", "Booking accepted successfully"},
		{"start", "IN_PROGRESS", "Booking started successfully"},
		{"complete", "COMPLETED", "Booking completed successfully"},
	} {
		w = doJSON(r, http.MethodPatch, "/api/worker/bookings/"+booking.ID+"/"+step.action, auth, nil)
		require.Equal(t, http.StatusOK, w.Code, "action %s", step.action)
		body := parseBody(t, w)
		assert.Equal(t, step.message, body["message"])
		assert.Equal(t, step.status, body["data"].(map[string]interface{})["status"])
	}

	// Completing twice reports the invalid transition.
	w = doJSON(r, http.MethodPatch, "/api/worker/bookings/"+booking.ID+"/complete", auth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t,
		"Cannot complete booking with status: COMPLETED. Only IN_PROGRESS bookings can be completed.",
		parseBody(t, w)["message"])
}

func TestWorkerRejectEndpoint(t *testing.T) {
	r, db := setupRouteTest(t)
	worker := routeTestProfile(t, db, models.RoleWorker, "rejector@example.com")
	auth := bearerToken(t, worker)

	booking := routeTestBooking(t, db, nil, models.BookingStatusAssigned)
	require.NoError(t, db.Model(booking).Update("assigned_worker_id", worker.ID).Error)

	w := doJSON(r, http.MethodPatch, "/api/worker/bookings/"+booking.ID+"/reject", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, "Booking rejected successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "CONFIRMED", data["status"])
	assert.Nil(t, data["assignedWorkerId"])

	// Once unassigned the worker has no claim on it.
	w = doJSON(r, http.MethodPatch, "/api/worker/bookings/"+booking.ID+"/accept", auth, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "This booking is not assigned to you", parseBody(t, w)["message"])
}

func TestAdminBookingEndpoints(t *testing.T) {
	r, db := setupRouteTest(t)
	admin := routeTestProfile(t, db, models.RoleAdmin, "admin@example.com")
	worker := routeTestProfile(t, db, models.RoleWorker, "crew@example.com")
	auth := bearerToken(t, admin)

	for i := 0; i < 3; i++ {
		routeTestBooking(t, db, nil, models.BookingStatusPending)
	}
	booking := routeTestBooking(t, db, nil, models.BookingStatusPending)

	// Non-admins are rejected by the role gate.
	w := doJSON(r, http.MethodGet, "/api/admin/bookings", bearerToken(t, worker), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/bookings?page=1&pageSize=2", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Len(t, body["data"].([]interface{}), 2)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(4), pagination["total"])
	assert.Equal(t, float64(2), pagination["totalPages"])

	w = doJSON(r, http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/status", auth, map[string]interface{}{
		"status": "CONFIRMED",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", parseBody(t, w)["data"].(map[string]interface{})["status"])

	w = doJSON(r, http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/assign", auth, map[string]interface{}{
		"workerId": worker.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = parseBody(t, w)
	assert.Equal(t, "Worker assigned successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ASSIGNED", data["status"])
	assert.Equal(t, worker.ID, data["assignedWorkerId"])

	w = doJSON(r, http.MethodPatch, "/api/admin/bookings/"+booking.ID+"/unassign", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = parseBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "CONFIRMED", data["status"])
	assert.Nil(t, data["assignedWorkerId"])

	w = doJSON(r, http.MethodGet, "/api/admin/bookings/missing-id", auth, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Booking not found", parseBody(t, w)["message"])
}
