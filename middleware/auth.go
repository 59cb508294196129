package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
)

const (
	// ContextUser holds the types.AuthUser resolved from the bearer token.
	ContextUser = "auth_user"
	// ContextProfile holds the *models.Profile loaded by RequireRole.
	ContextProfile = "auth_profile"
)

// RequireAuth validates the identity provider's bearer token locally with
// the shared JWT secret and attaches the caller's identity to the context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userFromToken(c, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error(), "data": nil})
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is
// present and continues anonymously otherwise.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := userFromToken(c, secret); err == nil {
			c.Set(ContextUser, user)
		}
		c.Next()
	}
}

// RequireRole resolves the caller's profile from the database and rejects
// the request unless its role is in the allowed set. The role is always
// re-read from the live record, never trusted from a token claim.
func RequireRole(db *gorm.DB, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "data": nil})
			c.Abort()
			return
		}

		var profile models.Profile
		if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "User profile not found. Please complete your profile setup.", "data": nil})
			c.Abort()
			return
		}

		for _, role := range roles {
			if profile.Role == role {
				c.Set(ContextProfile, &profile)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"message": "Access denied. Required role: " + joinRoles(roles) + ". Your role: " + string(profile.Role) + ".",
			"data":    nil,
		})
		c.Abort()
	}
}

// CurrentUser returns the authenticated identity, if any.
func CurrentUser(c *gin.Context) (types.AuthUser, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return types.AuthUser{}, false
	}
	user, ok := v.(types.AuthUser)
	return user, ok
}

// CurrentProfile returns the profile loaded by RequireRole.
func CurrentProfile(c *gin.Context) (*models.Profile, bool) {
	v, ok := c.Get(ContextProfile)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*models.Profile)
	return profile, ok
}

func userFromToken(c *gin.Context, secret string) (types.AuthUser, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return types.AuthUser{}, types.Unauthenticated("No token provided")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return types.AuthUser{}, types.Unauthenticated("Token must be in format: Bearer <token>")
	}

	token, err := jwt.ParseWithClaims(tokenString, &types.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return types.AuthUser{}, types.Unauthenticated("Invalid or expired token")
	}

	claims, ok := token.Claims.(*types.Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return types.AuthUser{}, types.Unauthenticated("Invalid token claims")
	}

	return types.AuthUser{ID: claims.Subject, Email: claims.Email}, nil
}

func joinRoles(roles []models.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, " or ")
}
