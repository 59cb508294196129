package middleware

import (
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

	"chorescape-server/models"
	"chorescape-server/types"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, userID, email string, expiry time.Duration) string {
	claims := types.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(db *gorm.DB, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	grp := r.Group("/protected")
	grp.Use(RequireAuth(testSecret))
	if len(roles) > 0 {
		grp.Use(RequireRole(db, roles...))
	}
	grp.GET("", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"userId": user.ID, "email": user.Email})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func responseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestRequireAuth(t *testing.T) {
	r := authTestRouter(nil)

	t.Run("missing token", func(t *testing.T) {
		w := doAuthRequest(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No token provided", responseMessage(t, w))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := doAuthRequest(r, "Token abc123")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token must be in format: Bearer <token>", responseMessage(t, w))
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "another-secret", "user-1", "u@example.com", time.Hour)
		w := doAuthRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid or expired token", responseMessage(t, w))
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, "user-1", "u@example.com", -time.Minute)
		w := doAuthRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid or expired token", responseMessage(t, w))
	})

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, testSecret, "user-1", "u@example.com", time.Hour)
		w := doAuthRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "user-1", body["userId"])
		assert.Equal(t, "u@example.com", body["email"])
	})
}

func TestRequireRole(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}))

	worker := &models.Profile{UserID: "worker-user", Email: "w@example.com", Role: models.RoleWorker}
	customer := &models.Profile{UserID: "customer-user", Email: "c@example.com", Role: models.RoleCustomer}
	require.NoError(t, db.Create(worker).Error)
	require.NoError(t, db.Create(customer).Error)

	r := authTestRouter(db, models.RoleWorker, models.RoleAdmin)

	t.Run("no profile", func(t *testing.T) {
		token := signToken(t, testSecret, "ghost-user", "g@example.com", time.Hour)
		w := doAuthRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "User profile not found. Please complete your profile setup.", responseMessage(t, w))
	})

	t.Run("wrong role", func(t *testing.T) {
		token := signToken(t, testSecret, customer.UserID, customer.Email, time.Hour)
		w := doAuthRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access denied. Required role: WORKER or ADMIN. Your role: CUSTOMER.", responseMessage(t, w))
	})

	t.Run("allowed role", func(t *testing.T) {
		token := signToken(t, testSecret, worker.UserID, worker.Email, time.Hour)
		w := doAuthRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalAuth(testSecret), func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"userId": user.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": nil})
	})

	// Anonymous callers pass through.
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body["userId"])

	// A garbage token is ignored rather than rejected.
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// A valid token attaches the identity.
	token := signToken(t, testSecret, "user-9", "o@example.com", time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-9", body["userId"])
}
