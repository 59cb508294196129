package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chorescape-server/models"
)

func TestAdminCareersListing(t *testing.T) {
	r, db := setupRouteTest(t)
	admin := routeTestProfile(t, db, models.RoleAdmin, "admin@example.com")
	token := bearerToken(t, admin)

	require.NoError(t, db.Create(&models.CareerApplication{
		Name:     "Dana Moose",
		Email:    "dana@example.com",
		JobTitle: "Residential Cleaner",
		Status:   "PENDING",
	}).Error)
	require.NoError(t, db.Create(&models.CareerApplication{
		Name:     "Lee Park",
		Email:    "lee@example.com",
		JobTitle: "Dispatcher",
		Status:   "REVIEWED",
	}).Error)

	w := doJSON(r, http.MethodGet, "/api/admin/careers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, "Career applications retrieved successfully", body["message"])
	assert.Len(t, body["data"], 2)

	w = doJSON(r, http.MethodGet, "/api/admin/careers?status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := parseBody(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Dana Moose", first["name"])
}

func TestAdminCareersListingRequiresAdmin(t *testing.T) {
	r, db := setupRouteTest(t)
	customer := routeTestProfile(t, db, models.RoleCustomer, "customer@example.com")

	w := doJSON(r, http.MethodGet, "/api/admin/careers", bearerToken(t, customer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
