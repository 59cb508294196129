package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the identity provider's access-token claims the
// server relies on. Subject is the provider's user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthUser is the identity attached to the request context after token
// validation. Profile resolution happens separately, against the database.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
