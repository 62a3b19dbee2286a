package models

import (
	"time"

	"github.com/google/uuid"
)

// Stored refresh token paired with the single access token currently valid for it
type RefreshToken struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Token       string
	AccessToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Revoked access token. Entry is kept until ExpiresAt, after that the token is expired anyway
type BlacklistedToken struct {
	Token         string
	BlacklistedAt time.Time
	ExpiresAt     time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Session issued on successful login
type Session struct {
	UserID  uuid.UUID
	Access  IssuedToken
	Refresh IssuedToken
}

// Verified token payload
type Claims struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}
