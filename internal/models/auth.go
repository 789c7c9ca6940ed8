package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials posted by the login form.
type LoginRequest struct {
	Username  string `form:"username" validate:"required"`
	Password  string `form:"password" validate:"required"`
	IP        string `form:"-"`
	UserAgent string `form:"-"`
}

// LoginResult returns the issued token and the resolved identity.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        UserInfo
}

// UserInfo describes the authenticated user.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// JWTClaims is the access token payload. Role is carried so handlers never re-probe it.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
