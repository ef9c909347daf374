package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims carried by access and refresh tokens.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the claims grant administrative access.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
