package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenInvalid     = errors.New("token is invalid")
	ErrTokenExpired     = errors.New("token is expired")
	ErrTokenBlacklisted = errors.New("token is blacklisted")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")

	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Caller is authenticated but does not own the resource
	ErrForbidden = errors.New("forbidden")
)
