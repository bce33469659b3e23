package domain

import "errors"

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("no token provided")
	// ErrInvalidToken covers malformed, expired, wrongly typed or orphaned tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound is returned when a token references a deleted user.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailNotVerified is returned when Google reports an unverified address.
	ErrEmailNotVerified = errors.New("google email is not verified")
	// ErrOAuthNotConfigured is returned when Google client credentials are missing.
	ErrOAuthNotConfigured = errors.New("google oauth is not configured")
	// ErrDeviceTokenRequired is returned when a push token is blank.
	ErrDeviceTokenRequired = errors.New("device token is required")
	// ErrShareCodeInvalid covers malformed, unknown, expired and already used share codes.
	ErrShareCodeInvalid = errors.New("invalid or expired share code")
)
