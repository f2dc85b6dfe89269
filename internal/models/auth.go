package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the roles carried in access tokens.
type UserRole string

const (
	RoleTherapist UserRole = "therapist"
	RoleParent    UserRole = "parent"
	RoleAdmin     UserRole = "admin"
)

// JWTClaims is the access token payload issued by the auth service. The
// subject holds the numeric user id, which for therapists is also their
// therapist id.
type JWTClaims struct {
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	IsActive *bool    `json:"is_active,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *JWTClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subject %q: %w", c.Subject, err)
	}
	return id, nil
}

// Active reports whether the account is active; tokens without the flag are.
func (c *JWTClaims) Active() bool {
	return c.IsActive == nil || *c.IsActive
}
