package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chorescape-server/config"
	"chorescape-server/types"
)

func newTestIdentityService(baseURL string) *IdentityService {
	cfg := &config.Config{}
	cfg.Identity.URL = baseURL
	cfg.Identity.ServiceKey = "service-key"
	return NewIdentityService(cfg)
}

func TestIdentityNotConfigured(t *testing.T) {
	svc := newTestIdentityService("")

	_, appErr := svc.SignIn("user@example.com", "secret123")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindUpstreamUnavailable, appErr.Kind)
	assert.Equal(t, "Identity provider is not configured", appErr.Message)
}

func TestIdentitySignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
			return
		}
		json.NewEncoder(w).Encode(IdentitySession{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    3600,
			User:         IdentityUser{ID: "user-1", Email: "user@example.com"},
		})
	}))
	defer srv.Close()

	svc := newTestIdentityService(srv.URL)

	session, appErr := svc.SignIn("user@example.com", "secret123")
	require.Nil(t, appErr)
	assert.Equal(t, "access-token", session.AccessToken)
	assert.Equal(t, "user-1", session.User.ID)

	_, appErr = svc.SignIn("user@example.com", "wrong")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindUnauthenticated, appErr.Kind)
	assert.Equal(t, "Invalid login credentials", appErr.Message)
}

func TestIdentitySignUpConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
	}))
	defer srv.Close()

	svc := newTestIdentityService(srv.URL)

	_, appErr := svc.SignUp("taken@example.com", "secret123")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindConflict, appErr.Kind)
	assert.Equal(t, "User already registered", appErr.Message)
}

func TestIdentityAdminCreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, true, payload["email_confirm"])

		json.NewEncoder(w).Encode(IdentityUser{ID: "worker-1", Email: payload["email"].(string)})
	}))
	defer srv.Close()

	svc := newTestIdentityService(srv.URL)

	user, appErr := svc.AdminCreateUser("crew@example.com", "secret123")
	require.Nil(t, appErr)
	assert.Equal(t, "worker-1", user.ID)
	assert.Equal(t, "crew@example.com", user.Email)
}

func TestIdentityProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestIdentityService(srv.URL)
	_, appErr := svc.SignIn("user@example.com", "secret123")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindUpstreamUnavailable, appErr.Kind)
	assert.Equal(t, "Identity provider error", appErr.Message)

	// A dead endpoint surfaces as unreachable, not a 500.
	svc = newTestIdentityService("http://127.0.0.1:1")
	_, appErr = svc.SignIn("user@example.com", "secret123")
	require.NotNil(t, appErr)
	assert.Equal(t, types.KindUpstreamUnavailable, appErr.Kind)
	assert.Equal(t, "Identity provider is unreachable", appErr.Message)
}
